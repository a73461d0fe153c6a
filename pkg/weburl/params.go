package weburl

import (
	"net/url"
	"strings"
)

// Param is one name/value pair of an application/x-www-form-urlencoded
// query. Names may repeat.
type Param struct {
	Name  string
	Value string
}

// url.QueryEscape follows RFC 3986 unreserved characters; the form
// serializer leaves '*' alone and escapes '~'.
var formEscapeFixups = strings.NewReplacer("%2A", "*", "~", "%7E")

// ParseParams splits a query (without the leading '?') into ordered
// pairs. Empty sequences are skipped and malformed escapes never fail.
func ParseParams(query string) []Param {
	if query == "" {
		return nil
	}

	var params []Param
	for _, seq := range strings.Split(query, "&") {
		if seq == "" {
			continue
		}
		name, value, _ := strings.Cut(seq, "=")
		params = append(params, Param{
			Name:  DecodeFormComponent(name),
			Value: DecodeFormComponent(value),
		})
	}
	return params
}

// EncodeParams serializes pairs as name=value joined by '&'.
func EncodeParams(params []Param) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(EncodeFormComponent(p.Name))
		b.WriteByte('=')
		b.WriteString(EncodeFormComponent(p.Value))
	}
	return b.String()
}

// DecodeFormComponent decodes one name or value: '+' is a space, escapes
// are decoded leniently and invalid UTF-8 becomes U+FFFD.
func DecodeFormComponent(s string) string {
	return ToValidUTF8(PercentDecode(strings.ReplaceAll(s, "+", " ")))
}

// EncodeFormComponent is the inverse of DecodeFormComponent.
func EncodeFormComponent(s string) string {
	return formEscapeFixups.Replace(url.QueryEscape(s))
}
