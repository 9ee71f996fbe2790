// Package parser converts raw NGINX combined access-log lines into
// structured log events.
package parser

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/logwarden/internal/domain"
)

// linePattern matches the NGINX combined log format:
// address, ident, user, [time], "request", status, bytes, "referer", "user agent".
var linePattern = regexp.MustCompile(
	`^(?P<remote_addr>\S+) \S+ (?P<remote_user>\S+) \[(?P<time_local>[^\]]+)\] ` +
		`"(?P<request>[^"]*)" (?P<status>\d{3}) (?P<body_bytes_sent>\S+) ` +
		`"(?P<http_referer>[^"]*)" "(?P<http_user_agent>[^"]*)"`,
)

// timeLayout is the NGINX time_local format, e.g. "10/Oct/2023:13:55:36 +0000".
const timeLayout = "02/Jan/2006:15:04:05 -0700"

// Parse converts one access-log line into a LogEvent.
//
// It fails with domain.ErrMalformedLine when the line does not match the
// combined log grammar and with domain.ErrBadTimestamp when the time_local
// field is unparsable. Parse has no side effects and never mutates its
// input; callers decide whether a failure skips the line or aborts.
func Parse(line string) (domain.LogEvent, error) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return domain.LogEvent{}, fmt.Errorf("%w: %q", domain.ErrMalformedLine, truncate(line, 120))
	}

	fields := make(map[string]string, len(m))
	for i, name := range linePattern.SubexpNames() {
		if name != "" {
			fields[name] = m[i]
		}
	}

	ts, err := time.Parse(timeLayout, fields["time_local"])
	if err != nil {
		return domain.LogEvent{}, fmt.Errorf("%w: %q", domain.ErrBadTimestamp, fields["time_local"])
	}

	status, err := strconv.Atoi(fields["status"])
	if err != nil {
		// Unreachable with the \d{3} group, kept for safety.
		return domain.LogEvent{}, fmt.Errorf("%w: bad status %q", domain.ErrMalformedLine, fields["status"])
	}

	// A "-" request is how the server logs a connection that sent no
	// request line at all; treat it like the other absent fields.
	method, path, query := splitRequest(dashEmpty(fields["request"]))

	return domain.LogEvent{
		Timestamp:  ts,
		SourceAddr: fields["remote_addr"],
		Method:     method,
		Path:       path,
		Query:      query,
		UserAgent:  dashEmpty(fields["http_user_agent"]),
		RemoteUser: dashEmpty(fields["remote_user"]),
		Status:     status,
		Raw:        line,
	}, nil
}

// splitRequest breaks a request line like "GET /login?user=a HTTP/1.1"
// into method, path, and query. Missing parts come back empty.
func splitRequest(request string) (method, path, query string) {
	parts := strings.SplitN(request, " ", 3)
	if len(parts) >= 1 {
		method = parts[0]
	}
	if len(parts) >= 2 {
		path = parts[1]
		if idx := strings.IndexByte(path, '?'); idx != -1 {
			query = path[idx+1:]
			path = path[:idx]
			// Percent-decode so pattern rules see the payload the
			// server saw, not its encoded form. Undecodable queries
			// are kept raw.
			if decoded, err := url.QueryUnescape(query); err == nil {
				query = decoded
			}
		}
	}
	return method, path, query
}

// dashEmpty normalizes the log convention of "-" for absent fields.
func dashEmpty(v string) string {
	if v == "-" {
		return ""
	}
	return v
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
