package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/absmach/fldash/dashboard"
	"github.com/absmach/fldash/pkg/api"
	"github.com/absmach/fldash/pkg/fl"
	"github.com/absmach/fldash/pkg/metrics"
	"github.com/absmach/supermq"
	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/go-chi/chi/v5"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const svcName = "dashboard"

func MakeHandler(svc dashboard.Service, logger *slog.Logger, instanceID string) http.Handler {
	mux := chi.NewRouter()

	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(apiutil.LoggingErrorEncoder(logger, api.EncodeError)),
	}

	mux.Post("/auth/login", otelhttp.NewHandler(kithttp.NewServer(
		loginEndpoint(svc),
		decodeLoginReq,
		api.EncodeResponse,
		opts...,
	), "login").ServeHTTP)

	mux.Get("/users/me", otelhttp.NewHandler(kithttp.NewServer(
		currentUserEndpoint(svc),
		decodeTokenReq,
		api.EncodeResponse,
		opts...,
	), "current-user").ServeHTTP)

	mux.Get("/users", otelhttp.NewHandler(kithttp.NewServer(
		listUsersEndpoint(svc),
		decodeTokenReq,
		api.EncodeResponse,
		opts...,
	), "list-users").ServeHTTP)

	mux.Route("/models", func(r chi.Router) {
		r.Get("/", otelhttp.NewHandler(kithttp.NewServer(
			listModelsEndpoint(svc),
			decodeListEntityReq,
			api.EncodeResponse,
			opts...,
		), "list-models").ServeHTTP)
		r.Post("/", otelhttp.NewHandler(kithttp.NewServer(
			createModelEndpoint(svc),
			decodeModelReq,
			api.EncodeResponse,
			opts...,
		), "create-model").ServeHTTP)
		r.Route("/{modelID}", func(r chi.Router) {
			r.Get("/", otelhttp.NewHandler(kithttp.NewServer(
				getModelEndpoint(svc),
				decodeEntityReq("modelID"),
				api.EncodeResponse,
				opts...,
			), "get-model").ServeHTTP)
			r.Get("/file", otelhttp.NewHandler(kithttp.NewServer(
				downloadModelEndpoint(svc),
				decodeEntityReq("modelID"),
				encodeFileResponse,
				opts...,
			), "download-model").ServeHTTP)
			r.Get("/keys", otelhttp.NewHandler(kithttp.NewServer(
				metricKeysEndpoint(svc),
				decodeEntityReq("modelID"),
				api.EncodeResponse,
				opts...,
			), "metric-keys").ServeHTTP)
			r.Get("/chart", otelhttp.NewHandler(kithttp.NewServer(
				modelChartEndpoint(svc),
				decodeChartReq,
				api.EncodeResponse,
				opts...,
			), "model-chart").ServeHTTP)
			r.Get("/chart.png", otelhttp.NewHandler(kithttp.NewServer(
				renderModelChartEndpoint(svc),
				decodeChartReq,
				encodePNGResponse,
				opts...,
			), "render-model-chart").ServeHTTP)
		})
	})

	mux.Route("/trainings", func(r chi.Router) {
		r.Get("/", otelhttp.NewHandler(kithttp.NewServer(
			listTrainingsEndpoint(svc),
			decodeListEntityReq,
			api.EncodeResponse,
			opts...,
		), "list-trainings").ServeHTTP)
		r.Post("/", otelhttp.NewHandler(kithttp.NewServer(
			createTrainingEndpoint(svc),
			decodeTrainingReq,
			api.EncodeResponse,
			opts...,
		), "create-training").ServeHTTP)
		r.Route("/{trainingID}", func(r chi.Router) {
			r.Get("/", otelhttp.NewHandler(kithttp.NewServer(
				getTrainingEndpoint(svc),
				decodeEntityReq("trainingID"),
				api.EncodeResponse,
				opts...,
			), "get-training").ServeHTTP)
			r.Delete("/", otelhttp.NewHandler(kithttp.NewServer(
				deleteTrainingEndpoint(svc),
				decodeEntityReq("trainingID"),
				api.EncodeResponse,
				opts...,
			), "delete-training").ServeHTTP)
			r.Post("/start", otelhttp.NewHandler(kithttp.NewServer(
				startTrainingEndpoint(svc),
				decodeEntityReq("trainingID"),
				api.EncodeResponse,
				opts...,
			), "start-training").ServeHTTP)
			r.Get("/participants", otelhttp.NewHandler(kithttp.NewServer(
				trainingParticipantsEndpoint(svc),
				decodeEntityReq("trainingID"),
				api.EncodeResponse,
				opts...,
			), "training-participants").ServeHTTP)
			r.Get("/locations", otelhttp.NewHandler(kithttp.NewServer(
				participantLocationsEndpoint(svc),
				decodeEntityReq("trainingID"),
				api.EncodeResponse,
				opts...,
			), "participant-locations").ServeHTTP)
		})
	})

	mux.Get("/watched", otelhttp.NewHandler(kithttp.NewServer(
		watchedTrainingsEndpoint(svc),
		decodeListEntityReq,
		api.EncodeResponse,
		opts...,
	), "watched-trainings").ServeHTTP)

	mux.Get("/snapshots", otelhttp.NewHandler(kithttp.NewServer(
		listSnapshotsEndpoint(svc),
		decodeListEntityReq,
		api.EncodeResponse,
		opts...,
	), "list-snapshots").ServeHTTP)

	mux.Post("/inference", otelhttp.NewHandler(kithttp.NewServer(
		inferenceEndpoint(svc),
		decodeInferenceReq,
		api.EncodeResponse,
		opts...,
	), "inference").ServeHTTP)

	mux.Get("/health", supermq.Health(svcName, instanceID))
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func encodePNGResponse(ctx context.Context, w http.ResponseWriter, response any) error {
	img, ok := response.([]byte)
	if !ok {
		return api.EncodeResponse(ctx, w, response)
	}
	w.Header().Set("Content-Type", api.PNGType)
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(img)

	return err
}

func encodeFileResponse(ctx context.Context, w http.ResponseWriter, response any) error {
	file, ok := response.(fl.ModelFile)
	if !ok {
		return api.EncodeResponse(ctx, w, response)
	}
	w.Header().Set("Content-Type", api.OctetStreamType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(file.Data)

	return err
}

func decodeLoginReq(_ context.Context, r *http.Request) (any, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.ContentType) {
		return nil, errors.Join(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Join(err, apiutil.ErrValidation)
	}

	return req, nil
}

func decodeTokenReq(_ context.Context, r *http.Request) (any, error) {
	return tokenReq{
		token: apiutil.ExtractBearerToken(r),
	}, nil
}

func decodeEntityReq(key string) kithttp.DecodeRequestFunc {
	return func(_ context.Context, r *http.Request) (any, error) {
		return entityReq{
			token: apiutil.ExtractBearerToken(r),
			id:    chi.URLParam(r, key),
		}, nil
	}
}

func decodeListEntityReq(_ context.Context, r *http.Request) (any, error) {
	o, err := apiutil.ReadNumQuery[uint64](r, api.OffsetKey, api.DefOffset)
	if err != nil {
		return nil, errors.Join(apiutil.ErrValidation, err)
	}

	l, err := apiutil.ReadNumQuery[uint64](r, api.LimitKey, api.DefLimit)
	if err != nil {
		return nil, errors.Join(apiutil.ErrValidation, err)
	}

	return listEntityReq{
		token:  apiutil.ExtractBearerToken(r),
		offset: o,
		limit:  l,
	}, nil
}

func decodeModelReq(_ context.Context, r *http.Request) (any, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.MultipartType) {
		return nil, errors.Join(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	r.Body = http.MaxBytesReader(nil, r.Body, api.MaxModelFileSize)
	if err := r.ParseMultipartForm(api.MaxModelFileSize); err != nil {
		return nil, errors.Join(err, apiutil.ErrValidation)
	}

	req := modelReq{
		token: apiutil.ExtractBearerToken(r),
		model: fl.Model{
			Name:        r.FormValue(api.NameKey),
			Description: r.FormValue(api.DescriptionKey),
		},
	}

	f, header, err := r.FormFile(api.ModelFileKey)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return req, nil
	case err != nil:
		return nil, errors.Join(err, apiutil.ErrValidation)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Join(err, apiutil.ErrValidation)
	}
	req.file = fl.ModelFile{Name: header.Filename, Data: data}

	return req, nil
}

func decodeInferenceReq(_ context.Context, r *http.Request) (any, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.ContentType) {
		return nil, errors.Join(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	req := inferenceReq{token: apiutil.ExtractBearerToken(r)}
	if err := json.NewDecoder(r.Body).Decode(&req.body); err != nil {
		return nil, errors.Join(err, apiutil.ErrValidation)
	}

	return req, nil
}

func decodeTrainingReq(_ context.Context, r *http.Request) (any, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.ContentType) {
		return nil, errors.Join(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	req := trainingReq{token: apiutil.ExtractBearerToken(r)}
	if err := json.NewDecoder(r.Body).Decode(&req.Training); err != nil {
		return nil, errors.Join(err, apiutil.ErrValidation)
	}

	return req, nil
}

func decodeChartReq(_ context.Context, r *http.Request) (any, error) {
	w, err := apiutil.ReadNumQuery[uint64](r, api.WidthKey, 0)
	if err != nil {
		return nil, errors.Join(apiutil.ErrValidation, err)
	}

	h, err := apiutil.ReadNumQuery[uint64](r, api.HeightKey, 0)
	if err != nil {
		return nil, errors.Join(apiutil.ErrValidation, err)
	}

	return chartReq{
		token:     apiutil.ExtractBearerToken(r),
		modelID:   chi.URLParam(r, "modelID"),
		key:       r.URL.Query().Get(api.KeyKey),
		selection: metrics.ParseSelection(r.URL.Query().Get(api.SelectionKey)),
		width:     int(min(w, dashboard.MaxChartWidth+1)),
		height:    int(min(h, dashboard.MaxChartHeight+1)),
	}, nil
}
