package report

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/rtao-god/solsignal-reports/pkg/adapters"
	"github.com/rtao-god/solsignal-reports/pkg/models/api"
	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
	"github.com/rtao-god/solsignal-reports/pkg/models/store"
	"github.com/rtao-god/solsignal-reports/pkg/services/export"
	reportsvc "github.com/rtao-god/solsignal-reports/pkg/services/report"
	"github.com/rtao-god/solsignal-reports/pkg/services/sections"
	"github.com/rtao-god/solsignal-reports/pkg/store/objectstore"
)

// Refresher refreshes snapshots on demand and reports the refresh history.
type Refresher interface {
	RefreshNow(ctx context.Context) (map[string]error, error)
	Status(ctx context.Context) ([]*store.RefreshState, error)
}

type Handler struct {
	service   reportsvc.Service
	refresher Refresher
	uploader  objectstore.Uploader
	export    export.Options
	validate  *validator.Validate
}

type Options struct {
	Service reportsvc.Service
	// Refresher and Uploader are optional.
	Refresher Refresher
	Uploader  objectstore.Uploader
	Export    export.Options
}

func NewHandler(opts Options) *Handler {
	return &Handler{
		service:   opts.Service,
		refresher: opts.Refresher,
		uploader:  opts.Uploader,
		export:    opts.Export,
		validate:  newValidator(),
	}
}

// newValidator reports query parameter names instead of struct field names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("query")
	})
	return v
}

type viewParams struct {
	Group  string `query:"group" validate:"omitempty,max=64"`
	Bucket string `query:"bucket" validate:"omitempty,oneof=all daily intraday delayed"`
	Metric string `query:"metric" validate:"omitempty,oneof=all real no-biggest-liq-loss"`
	Zonal  string `query:"zonal" validate:"omitempty,max=64"`
	TpSl   string `query:"tpsl" validate:"omitempty,oneof=all dynamic static"`
}

func (h *Handler) parseQuery(r *http.Request) (domain.ViewQuery, error) {
	q := r.URL.Query()
	p := viewParams{
		Group:  q.Get("group"),
		Bucket: q.Get("bucket"),
		Metric: q.Get("metric"),
		Zonal:  q.Get("zonal"),
		TpSl:   q.Get("tpsl"),
	}
	if err := h.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return domain.ViewQuery{}, fmt.Errorf("invalid %s %q: %w", fe.Field(), fe.Value(), sections.ErrUnknownMode)
		}
		return domain.ViewQuery{}, err
	}

	return domain.ViewQuery{
		Group:  p.Group,
		Bucket: p.Bucket,
		Metric: p.Metric,
		Zonal:  p.Zonal,
		TpSl:   domain.TpSlMode(p.TpSl),
	}, nil
}

func (h *Handler) ListKinds(w http.ResponseWriter, r *http.Request) {
	kinds := h.service.Kinds()
	response := make([]api.ReportKind, 0, len(kinds))
	for _, k := range kinds {
		response = append(response, api.ReportKind{Kind: k.Kind, Endpoint: k.Endpoint})
	}
	render.JSON(w, r, response)
}

func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind := chi.URLParam(r, "kind")

	query, err := h.parseQuery(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	view, err := h.service.BuildView(ctx, kind, query)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render.JSON(w, r, adapters.MapDomainViewToAPI(view))
}

func (h *Handler) GetRaw(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")

	doc, err := h.service.GetReport(r.Context(), kind)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render.JSON(w, r, adapters.MapDomainReportToAPI(doc))
}

// ExportTable serves one table of the view as a file. Tables are addressed by
// their 0-based position in the view's tables. With ?upload=true the file is
// stored in the export bucket instead and its URI is returned.
func (h *Handler) ExportTable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	kind := chi.URLParam(r, "kind")

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		render.Render(w, r, api.NewError(http.StatusBadRequest, "invalid_index", "table index must be an integer"))
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		render.Render(w, r, api.NewError(http.StatusBadRequest, "invalid_format", err.Error()))
		return
	}

	query, err := h.parseQuery(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	sort := reportsvc.TableSort{
		Column:    r.URL.Query().Get("sort"),
		Direction: sections.SortDirection(r.URL.Query().Get("dir")),
	}
	table, err := h.service.Table(ctx, kind, query, index, sort)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	data, err := export.Encode(table, format, h.export)
	if err != nil {
		logger.Error().Err(err).Str("kind", kind).Int("table", index).Msg("failed to encode export")
		render.Render(w, r, api.NewError(http.StatusInternalServerError, "export_failed", "failed to encode export"))
		return
	}

	name := export.FileName(kind, index, format)
	if upload, _ := strconv.ParseBool(r.URL.Query().Get("upload")); upload {
		if h.uploader == nil {
			render.Render(w, r, api.NewError(http.StatusBadRequest, "upload_disabled", "no export bucket configured"))
			return
		}
		uri, err := h.uploader.Upload(ctx, name, format.ContentType(), data)
		if err != nil {
			logger.Error().Err(err).Msg("failed to upload export")
			render.Render(w, r, api.NewError(http.StatusBadGateway, "upload_failed", "failed to upload export"))
			return
		}
		render.JSON(w, r, api.ExportUpload{URI: uri})
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := w.Write(data); err != nil {
		logger.Error().Err(err).Msg("failed to write export")
	}
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		failures map[string]error
		err      error
	)
	if h.refresher != nil {
		failures, err = h.refresher.RefreshNow(ctx)
	} else {
		failures, err = h.service.Refresh(ctx)
	}
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	kinds := h.service.Kinds()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.Kind)
	}
	render.JSON(w, r, adapters.MapRefreshOutcomeToAPI(names, failures))
}

func (h *Handler) RefreshStatus(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		render.JSON(w, r, []api.RefreshState{})
		return
	}

	states, err := h.refresher.Status(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	response := make([]api.RefreshState, 0, len(states))
	for _, s := range states {
		response = append(response, adapters.MapStoreRefreshStateToAPI(s))
	}
	render.JSON(w, r, response)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := mapError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}
	if err := render.Render(w, r, apiErr); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to render error")
	}
}

func mapError(err error) *api.Error {
	switch {
	case errors.Is(err, reportsvc.ErrUnknownKind):
		return api.NewError(http.StatusNotFound, "unknown_kind", err.Error())
	case errors.Is(err, reportsvc.ErrTableNotFound):
		return api.NewError(http.StatusNotFound, "table_not_found", err.Error())
	case errors.Is(err, reportsvc.ErrUnknownGroup):
		return api.NewError(http.StatusBadRequest, "unknown_group", err.Error())
	case errors.Is(err, reportsvc.ErrModeNotSupported):
		return api.NewError(http.StatusBadRequest, "mode_not_supported", err.Error())
	case errors.Is(err, sections.ErrUnknownMode):
		return api.NewError(http.StatusBadRequest, "invalid_mode", err.Error())
	case errors.Is(err, sections.ErrUnknownColumn):
		return api.NewError(http.StatusBadRequest, "unknown_column", err.Error())
	case errors.Is(err, sections.ErrContractViolation):
		return api.NewError(http.StatusUnprocessableEntity, "contract_violation", err.Error())
	case errors.Is(err, reportsvc.ErrUnavailable):
		return api.NewError(http.StatusBadGateway, "upstream_unavailable", "report backend unavailable and no snapshot stored")
	case errors.Is(err, context.Canceled):
		return api.NewError(http.StatusServiceUnavailable, "cancelled", "request cancelled")
	default:
		return api.NewError(http.StatusInternalServerError, "internal_error", "internal error")
	}
}
