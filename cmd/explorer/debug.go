package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"tailscale.com/tsweb"
)

// debugServer serves the /debug/ admin routes of the run store and the
// serial link. Routes are attached as those components come up.
type debugServer struct {
	mux  *http.ServeMux
	ln   net.Listener
	srv  *http.Server
	done chan struct{}
}

// startDebugServer listens on addr, which must name a loopback interface.
// A bare ":port" binds to localhost.
func startDebugServer(addr string) (*debugServer, error) {
	addr, err := loopbackAddr(addr)
	if err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	tsweb.Debugger(mux)

	d := &debugServer{
		mux:  mux,
		ln:   ln,
		srv:  &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		done: make(chan struct{}),
	}
	go func() {
		defer close(d.done)
		if err := d.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("debug server stopped: %v", err)
		}
	}()
	return d, nil
}

func (d *debugServer) addr() string { return d.ln.Addr().String() }

func (d *debugServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.srv.Shutdown(ctx); err != nil {
		log.Printf("debug server shutdown error: %v", err)
		if err := d.srv.Close(); err != nil {
			log.Printf("debug server force close error: %v", err)
		}
	}
	<-d.done
}

func loopbackAddr(addr string) (string, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("invalid debug address %q: %w", addr, err)
	}
	switch host {
	case "":
		host = "localhost"
	case "localhost":
	default:
		ip := net.ParseIP(host)
		if ip == nil || !ip.IsLoopback() {
			return "", fmt.Errorf("debug address %q is not a loopback address", addr)
		}
	}
	return net.JoinHostPort(host, port), nil
}
