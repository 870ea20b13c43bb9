package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/pelagos-finance/defi-indexer/presenter/http/render"
)

type ctxKey int

const addressCtxKey ctxKey = iota

// GetAddressMiddleware validates the {address} route parameter and puts the
// parsed address into the request context.
func GetAddressMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "address")
		if !common.IsHexAddress(raw) {
			render.BadRequest(w, r, fmt.Errorf("invalid address %q", raw))
			return
		}
		ctx := context.WithValue(r.Context(), addressCtxKey, common.HexToAddress(raw))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func Address(ctx context.Context) common.Address {
	if addr, ok := ctx.Value(addressCtxKey).(common.Address); ok {
		return addr
	}
	return common.Address{}
}
