package api

import (
	"context"
	"encoding/json"
	"io"
	"sync"
)

// fakeRequester records calls and answers from a canned JSON payload.
type fakeRequester struct {
	mu    sync.Mutex
	calls []Call
	resp  any
	raw   string
	err   error
}

func (f *fakeRequester) Send(_ context.Context, c Call) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if c.Raw != nil {
		_, err := io.WriteString(c.Raw, f.raw)
		return err
	}
	if c.Out == nil || f.resp == nil {
		return nil
	}
	b, err := json.Marshal(f.resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, c.Out)
}

func (f *fakeRequester) last() Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeRequester) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
