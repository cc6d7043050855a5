package api

import (
	"context"
	"errors"

	"github.com/absmach/fldash/dashboard"
	pkgerrors "github.com/absmach/fldash/pkg/errors"
	"github.com/absmach/fldash/pkg/fl"
	"github.com/absmach/fldash/pkg/metrics"
	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/go-kit/kit/endpoint"
)

func loginEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(loginReq)
		if !ok {
			return tokenResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return tokenResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		tkn, err := svc.Login(ctx, req.Username, req.Password)
		if err != nil {
			return tokenResponse{}, err
		}

		return tokenResponse{Token: tkn}, nil
	}
}

func currentUserEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(tokenReq)
		if !ok {
			return userResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return userResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		u, err := svc.CurrentUser(ctx, req.token)
		if err != nil {
			return userResponse{}, err
		}

		return userResponse{User: u}, nil
	}
}

func listUsersEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(tokenReq)
		if !ok {
			return listUsersResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return listUsersResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		users, err := svc.ListUsers(ctx, req.token)
		if err != nil {
			return listUsersResponse{}, err
		}
		if users == nil {
			users = []fl.User{}
		}

		return listUsersResponse{Users: users}, nil
	}
}

func listModelsEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(listEntityReq)
		if !ok {
			return listModelsResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return listModelsResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		page, err := svc.ListModels(ctx, req.token, req.offset, req.limit)
		if err != nil {
			return listModelsResponse{}, err
		}

		return listModelsResponse{ModelPage: page}, nil
	}
}

func createModelEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(modelReq)
		if !ok {
			return modelResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return modelResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		m, err := svc.CreateModel(ctx, req.token, req.model, req.file)
		if err != nil {
			return modelResponse{}, err
		}

		return modelResponse{Model: m, created: true}, nil
	}
}

func getModelEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(entityReq)
		if !ok {
			return modelResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return modelResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		m, err := svc.GetModel(ctx, req.token, req.id)
		if err != nil {
			return modelResponse{}, err
		}

		return modelResponse{Model: m}, nil
	}
}

func downloadModelEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(entityReq)
		if !ok {
			return nil, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return nil, errors.Join(apiutil.ErrValidation, err)
		}

		return svc.DownloadModel(ctx, req.token, req.id)
	}
}

func metricKeysEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(entityReq)
		if !ok {
			return keysResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return keysResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		keys, err := svc.MetricKeys(ctx, req.token, req.id)
		if err != nil {
			return keysResponse{}, err
		}

		return keysResponse{ModelID: req.id, Keys: keys}, nil
	}
}

func modelChartEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(chartReq)
		if !ok {
			return chartResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return chartResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		data, err := svc.ModelChart(ctx, req.token, req.modelID, req.key, req.selection)
		if err != nil {
			return chartResponse{}, err
		}

		return chartResponse{
			ModelID:   req.modelID,
			Selection: req.selection.String(),
			ChartData: data,
		}, nil
	}
}

func renderModelChartEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(chartReq)
		if !ok {
			return nil, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return nil, errors.Join(apiutil.ErrValidation, err)
		}

		return svc.RenderModelChart(ctx, req.token, req.modelID, req.key, req.selection, req.width, req.height)
	}
}

func listTrainingsEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(listEntityReq)
		if !ok {
			return listTrainingsResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return listTrainingsResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		page, err := svc.ListTrainings(ctx, req.token, req.offset, req.limit)
		if err != nil {
			return listTrainingsResponse{}, err
		}

		return listTrainingsResponse{TrainingPage: page}, nil
	}
}

func createTrainingEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(trainingReq)
		if !ok {
			return trainingResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return trainingResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		t, err := svc.CreateTraining(ctx, req.token, req.Training)
		if err != nil {
			return trainingResponse{}, err
		}

		return trainingResponse{Training: t, created: true}, nil
	}
}

func getTrainingEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(entityReq)
		if !ok {
			return trainingResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return trainingResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		t, err := svc.GetTraining(ctx, req.token, req.id)
		if err != nil {
			return trainingResponse{}, err
		}

		return trainingResponse{Training: t}, nil
	}
}

func startTrainingEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(entityReq)
		if !ok {
			return trainingResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return trainingResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		t, err := svc.StartTraining(ctx, req.token, req.id)
		if err != nil {
			return trainingResponse{}, err
		}

		return trainingResponse{Training: t}, nil
	}
}

func deleteTrainingEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(entityReq)
		if !ok {
			return deleteResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return deleteResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		if err := svc.DeleteTraining(ctx, req.token, req.id); err != nil {
			return deleteResponse{}, err
		}

		return deleteResponse{}, nil
	}
}

func participantLocationsEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(entityReq)
		if !ok {
			return locationsResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return locationsResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		locations, err := svc.ParticipantLocations(ctx, req.token, req.id)
		if err != nil {
			return locationsResponse{}, err
		}
		if locations == nil {
			locations = fl.Locations{}
		}

		return locationsResponse{Locations: locations}, nil
	}
}

func trainingParticipantsEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(entityReq)
		if !ok {
			return participantsResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return participantsResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		participants, err := svc.TrainingParticipants(ctx, req.token, req.id)
		if err != nil {
			return participantsResponse{}, err
		}
		if participants == nil {
			participants = []metrics.Participant{}
		}

		return participantsResponse{Participants: participants}, nil
	}
}

func watchedTrainingsEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(listEntityReq)
		if !ok {
			return listTrainingsResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return listTrainingsResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		page, err := svc.WatchedTrainings(ctx, req.offset, req.limit)
		if err != nil {
			return listTrainingsResponse{}, err
		}

		return listTrainingsResponse{TrainingPage: page}, nil
	}
}

func listSnapshotsEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(listEntityReq)
		if !ok {
			return listSnapshotsResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return listSnapshotsResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		page, err := svc.Snapshots(ctx, req.offset, req.limit)
		if err != nil {
			return listSnapshotsResponse{}, err
		}

		return listSnapshotsResponse{SnapshotPage: page}, nil
	}
}

func inferenceEndpoint(svc dashboard.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(inferenceReq)
		if !ok {
			return inferenceResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return inferenceResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		res, err := svc.Inference(ctx, req.token, req.body)
		if err != nil {
			return inferenceResponse{}, err
		}

		return inferenceResponse{raw: res}, nil
	}
}
