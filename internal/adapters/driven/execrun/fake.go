package execrun

import (
	"context"
	"errors"
	"sync"
)

// Call records one Fake invocation.
type Call struct {
	Name string
	Args []string
}

// Fake is a scripted Runner for adapter tests.
type Fake struct {
	mu sync.Mutex

	// Handler produces the output of each call.
	Handler func(name string, args []string) (stdout, stderr []byte, err error)

	// Installed lists the binaries LookPath resolves.
	Installed map[string]bool

	Calls []Call
}

// Run records the call and delegates to Handler.
func (f *Fake) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, Call{Name: name, Args: append([]string(nil), args...)})
	f.mu.Unlock()
	if f.Handler == nil {
		return nil, nil, nil
	}
	return f.Handler(name, args)
}

// LookPath succeeds for Installed binaries.
func (f *Fake) LookPath(name string) (string, error) {
	if f.Installed[name] {
		return "/usr/bin/" + name, nil
	}
	return "", errors.New("executable file not found in $PATH")
}
