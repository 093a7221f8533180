package session

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mysqlx-shell/core/xerr"
)

// ParseDSN parses the connection-string grammar (spec §6):
//
//	[scheme '://'] [user [':' password] '@'] host [':' port] ['/' schema] ['?' params]
//
// Recognised params: tls-mode, ca-path, ca-dir, cert-path, key-path,
// auth-method, connect-timeout-ms.
func ParseDSN(s string) (Options, error) {
	var opts Options

	rest := s
	if idx := strings.Index(rest, "://"); idx >= 0 {
		rest = rest[idx+3:]
	}

	if idx := strings.Index(rest, "?"); idx >= 0 {
		query := rest[idx+1:]
		rest = rest[:idx]
		values, err := url.ParseQuery(query)
		if err != nil {
			return Options{}, xerr.Wrap(xerr.KindMalformed, err, "session: parse dsn query")
		}
		if err := applyParams(&opts, values); err != nil {
			return Options{}, err
		}
	}

	if idx := strings.Index(rest, "/"); idx >= 0 {
		schema, err := url.PathUnescape(rest[idx+1:])
		if err != nil {
			return Options{}, xerr.Wrap(xerr.KindMalformed, err, "session: parse dsn schema")
		}
		opts.Schema = schema
		rest = rest[:idx]
	}

	if idx := strings.LastIndex(rest, "@"); idx >= 0 {
		userinfo := rest[:idx]
		rest = rest[idx+1:]
		rawUser := userinfo
		if colon := strings.Index(userinfo, ":"); colon >= 0 {
			rawUser = userinfo[:colon]
			password, err := url.QueryUnescape(userinfo[colon+1:])
			if err != nil {
				return Options{}, xerr.Wrap(xerr.KindMalformed, err, "session: parse dsn password")
			}
			opts.Password = password
		}
		user, err := url.QueryUnescape(rawUser)
		if err != nil {
			return Options{}, xerr.Wrap(xerr.KindMalformed, err, "session: parse dsn user")
		}
		opts.User = user
	}

	host := rest
	if idx := strings.LastIndex(rest, ":"); idx >= 0 && !strings.Contains(rest[idx:], "/") {
		host = rest[:idx]
		port, err := strconv.Atoi(rest[idx+1:])
		if err != nil {
			return Options{}, xerr.Wrap(xerr.KindMalformed, err, "session: parse dsn port")
		}
		opts.Port = port
	}
	opts.Host = host

	if opts.User == "" {
		opts.User = defaultUser()
	}
	opts.Normalize()
	return opts, nil
}

func applyParams(opts *Options, values url.Values) error {
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		v := vals[0]
		switch key {
		case "tls-mode":
			mode, err := parseTLSMode(v)
			if err != nil {
				return err
			}
			opts.SetTLSMode(mode)
		case "ca-path":
			opts.CAPath = v
		case "ca-dir":
			opts.CADir = v
		case "cert-path":
			opts.CertPath = v
		case "key-path":
			opts.KeyPath = v
		case "auth-method":
			opts.AuthMethod = v
		case "connect-timeout-ms":
			ms, err := strconv.Atoi(v)
			if err != nil {
				return xerr.Wrap(xerr.KindMalformed, err, "session: parse connect-timeout-ms")
			}
			opts.ConnectTimeout = time.Duration(ms) * time.Millisecond
		}
	}
	return nil
}

func parseTLSMode(v string) (TLSMode, error) {
	switch v {
	case "disabled":
		return TLSDisabled, nil
	case "preferred":
		return TLSPreferred, nil
	case "required":
		return TLSRequired, nil
	case "verify-ca":
		return TLSVerifyCA, nil
	case "verify-identity":
		return TLSVerifyIdentity, nil
	}
	return 0, xerr.New(xerr.KindMalformed, "session: unknown tls-mode %q", v)
}
