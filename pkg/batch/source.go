package batch

import (
	"bufio"
	"context"
	"io"
)

// Slice streams items. The channel is closed after the last item or when
// ctx is done.
func Slice(ctx context.Context, items []string) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		for _, item := range items {
			select {
			case out <- item:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Lines streams the lines of r. The returned func reports the read error,
// if any, and must only be called once the channel is closed.
func Lines(ctx context.Context, r io.Reader) (<-chan string, func() error) {
	out := make(chan string)
	var err error
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case out <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		err = scanner.Err()
	}()
	return out, func() error { return err }
}
