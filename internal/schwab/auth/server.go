package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
)

// callbackServer is a short-lived loopback listener that catches the OAuth
// redirect and hands the authorization code back to the manager.
type callbackServer struct {
	listener net.Listener
	server   *http.Server
	codes    chan string
	errs     chan error
}

// newCallbackServer listens on the host/port of the configured redirect URL.
func newCallbackServer(redirectURL, state string) (*callbackServer, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URL: %w", err)
	}

	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", u.Host, err)
	}

	s := &callbackServer{
		listener: ln,
		codes:    make(chan string, 1),
		errs:     make(chan error, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(u.Path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("state"); got != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			s.errs <- fmt.Errorf("authorization state mismatch")
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			s.errs <- fmt.Errorf("callback carried no authorization code")
			return
		}
		fmt.Fprintln(w, "Authorized. You can close this tab.")
		s.codes <- code
	})

	s.server = &http.Server{Handler: mux}
	go s.server.Serve(ln)
	return s, nil
}

// WaitForCode blocks until the redirect arrives or the context ends.
func (s *callbackServer) WaitForCode(ctx context.Context) (string, error) {
	select {
	case code := <-s.codes:
		return code, nil
	case err := <-s.errs:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close shuts the listener down.
func (s *callbackServer) Close() error {
	return s.server.Close()
}

// openBrowser launches the default browser with the consent URL.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("cmd", "/c", "start", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
