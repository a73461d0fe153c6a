package process

import (
	"fmt"
	"log/slog"

	"github.com/benjaminestes/robots"
)

// RobotsURL returns the robots.txt location governing rawURL.
func RobotsURL(rawURL string) (robotsURL string, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("panic locating robots.txt", slog.String("url", rawURL), slog.Any("panic", r))
			robotsURL, err = "", fmt.Errorf("locate robots.txt for %q: %v", rawURL, r)
		}
	}()

	return robots.Locate(rawURL)
}
