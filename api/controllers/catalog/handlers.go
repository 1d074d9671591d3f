package catalog

import (
	"net/http"

	"github.com/streetfood/rawmart/api/responses"
	"github.com/streetfood/rawmart/api/validators"
	catalogsvc "github.com/streetfood/rawmart/internal/catalog"
	pkgerrors "github.com/streetfood/rawmart/pkg/errors"
	"github.com/streetfood/rawmart/pkg/logger"
	"github.com/streetfood/rawmart/pkg/pagination"
	"github.com/streetfood/rawmart/pkg/types"
)

const (
	maxSearchLength = 100
	maxOffset       = 100000
)

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
}

// ListMaterials handles GET /materials with search, category, sort_by,
// filter_by, limit and offset query parameters.
func ListMaterials(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}

		query, err := parseMaterialQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		materials, err := svc.ListMaterials(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, materials)
	}
}

func parseMaterialQuery(r *http.Request) (types.MaterialQuery, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
	if err != nil {
		return types.MaterialQuery{}, err
	}
	offset, err := validators.ParseQueryInt(r, "offset", 0, 0, maxOffset)
	if err != nil {
		return types.MaterialQuery{}, err
	}
	q := r.URL.Query()
	return types.MaterialQuery{
		Search:   validators.SanitizeString(q.Get("search"), maxSearchLength),
		Category: validators.SanitizeString(q.Get("category"), maxSearchLength),
		SortBy:   validators.SanitizeString(q.Get("sort_by"), maxSearchLength),
		FilterBy: validators.SanitizeString(q.Get("filter_by"), maxSearchLength),
		Limit:    limit,
		Offset:   offset,
	}, nil
}

func GetMaterial(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}

		id, err := validators.ParsePathID(r, "materialId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		material, err := svc.GetMaterial(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, material)
	}
}

func ListCategories(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

func ListSuppliers(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		suppliers, err := svc.ListSuppliers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, suppliers)
	}
}
