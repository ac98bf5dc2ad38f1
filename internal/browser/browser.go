// Package browser opens news links in the user's default browser.
package browser

import (
	"net/url"
	"os/exec"
	"runtime"

	"github.com/pkg/errors"
)

// start launches name with args without waiting for it.
var start = defaultStart

func defaultStart(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Validate accepts only absolute http(s) URLs with a host.
func Validate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return errors.Wrap(err, "invalid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}
	if u.Host == "" {
		return errors.Errorf("refusing to open URL without a host: %q", rawURL)
	}
	return nil
}

func Open(rawURL string) error {
	if err := Validate(rawURL); err != nil {
		return err
	}

	var err error
	switch runtime.GOOS {
	case "darwin":
		err = start("open", rawURL)
	case "windows":
		// Use rundll32 instead of cmd /c start to avoid shell interpretation
		err = start("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		err = start("xdg-open", rawURL)
	}
	return errors.Wrap(err, "opening browser")
}
