package validators

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/streetfood/rawmart/pkg/errors"
)

// fieldError reports one bad parameter in the same details shape body
// validation uses: {"<field>": "<problem>"}.
func fieldError(field, problem string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, field+" "+problem).
		WithDetails(map[string]string{field: problem})
}

// ParseQueryInt reads an optional integer query parameter bounded by
// [lo, hi]. A blank or missing value yields def.
func ParseQueryInt(r *http.Request, key string, def, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fieldError(key, "must be an integer")
	}
	if n < lo || n > hi {
		return 0, fieldError(key, fmt.Sprintf("must be between %d and %d", lo, hi))
	}
	return n, nil
}

// ParsePathID reads a positive integer chi route parameter.
func ParsePathID(r *http.Request, key string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, key)), 10, 64)
	if err != nil || id < 1 {
		return 0, fieldError(key, "must be a positive integer")
	}
	return id, nil
}
