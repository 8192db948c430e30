package middleware

import "net/http"

type Middleware func(http.Handler) http.Handler

// Chain folds mws into one Middleware. The first one listed sees the request
// first.
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}

func Wrap(h http.Handler, mws ...Middleware) http.Handler {
	return Chain(mws...)(h)
}
