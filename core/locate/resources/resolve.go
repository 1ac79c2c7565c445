package resources

import (
	"context"
)

type bytesPlusErr struct {
	data []byte
	err  error
}

// FontPromise delivers the bytes of a font once fetching has completed.
// A promise belongs to a single consumer; Bytes may be called more than
// once, but not concurrently.
type FontPromise interface {
	Name() string
	Bytes() ([]byte, error)
}

type fontLoader struct {
	name  string
	await func() ([]byte, error)
}

func (loader fontLoader) Name() string {
	return loader.name
}

func (loader fontLoader) Bytes() ([]byte, error) {
	return loader.await()
}

// ResolveFont fetches a font from a source in the background. Calling Bytes
// on the returned promise blocks until the font data has arrived or ctx is
// done.
func ResolveFont(ctx context.Context, src FontSource, name string) FontPromise {
	ch := make(chan bytesPlusErr, 1)
	go func(ch chan<- bytesPlusErr) {
		defer close(ch)
		result := bytesPlusErr{}
		if src == nil {
			result.err = NotFound(name)
		} else {
			result.data, result.err = src.Fetch(ctx, name)
		}
		if result.err != nil {
			tracer().Debugf("cannot fetch font %s: %v", name, result.err)
		}
		ch <- result
	}(ch)
	var result *bytesPlusErr
	return fontLoader{
		name: name,
		await: func() ([]byte, error) {
			if result != nil {
				return result.data, result.err
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case r := <-ch:
				result = &r
				return r.data, r.err
			}
		},
	}
}
