package api

import (
	"encoding/json"
	"net/http"

	"github.com/absmach/fldash/pkg/fl"
	"github.com/absmach/fldash/pkg/metrics"
	"github.com/absmach/supermq"
)

var (
	_ supermq.Response = (*tokenResponse)(nil)
	_ supermq.Response = (*userResponse)(nil)
	_ supermq.Response = (*modelResponse)(nil)
	_ supermq.Response = (*listModelsResponse)(nil)
	_ supermq.Response = (*trainingResponse)(nil)
	_ supermq.Response = (*listTrainingsResponse)(nil)
	_ supermq.Response = (*participantsResponse)(nil)
	_ supermq.Response = (*keysResponse)(nil)
	_ supermq.Response = (*chartResponse)(nil)
	_ supermq.Response = (*listUsersResponse)(nil)
	_ supermq.Response = (*deleteResponse)(nil)
	_ supermq.Response = (*locationsResponse)(nil)
	_ supermq.Response = (*listSnapshotsResponse)(nil)
	_ supermq.Response = (*inferenceResponse)(nil)
)

type tokenResponse struct {
	fl.Token
}

func (r tokenResponse) Code() int {
	return http.StatusOK
}

func (r tokenResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r tokenResponse) Empty() bool {
	return false
}

type userResponse struct {
	fl.User
}

func (r userResponse) Code() int {
	return http.StatusOK
}

func (r userResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r userResponse) Empty() bool {
	return false
}

type modelResponse struct {
	fl.Model
	created bool
}

func (r modelResponse) Code() int {
	if r.created {
		return http.StatusCreated
	}

	return http.StatusOK
}

func (r modelResponse) Headers() map[string]string {
	if r.created {
		return map[string]string{
			"Location": "/models/" + r.ID,
		}
	}

	return map[string]string{}
}

func (r modelResponse) Empty() bool {
	return false
}

type listModelsResponse struct {
	fl.ModelPage
}

func (r listModelsResponse) Code() int {
	return http.StatusOK
}

func (r listModelsResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r listModelsResponse) Empty() bool {
	return false
}

type trainingResponse struct {
	fl.Training
	created bool
}

func (r trainingResponse) Code() int {
	if r.created {
		return http.StatusCreated
	}

	return http.StatusOK
}

func (r trainingResponse) Headers() map[string]string {
	if r.created {
		return map[string]string{
			"Location": "/trainings/" + r.ID,
		}
	}

	return map[string]string{}
}

func (r trainingResponse) Empty() bool {
	return false
}

type listTrainingsResponse struct {
	fl.TrainingPage
}

func (r listTrainingsResponse) Code() int {
	return http.StatusOK
}

func (r listTrainingsResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r listTrainingsResponse) Empty() bool {
	return false
}

type participantsResponse struct {
	Participants []metrics.Participant `json:"participants"`
}

func (r participantsResponse) Code() int {
	return http.StatusOK
}

func (r participantsResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r participantsResponse) Empty() bool {
	return false
}

type keysResponse struct {
	ModelID string   `json:"model_id"`
	Keys    []string `json:"keys"`
}

func (r keysResponse) Code() int {
	return http.StatusOK
}

func (r keysResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r keysResponse) Empty() bool {
	return false
}

type chartResponse struct {
	ModelID   string `json:"model_id"`
	Selection string `json:"selection"`
	metrics.ChartData
}

func (r chartResponse) Code() int {
	return http.StatusOK
}

func (r chartResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r chartResponse) Empty() bool {
	return false
}

type listUsersResponse struct {
	Users []fl.User `json:"users"`
}

func (r listUsersResponse) Code() int {
	return http.StatusOK
}

func (r listUsersResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r listUsersResponse) Empty() bool {
	return false
}

type deleteResponse struct{}

func (r deleteResponse) Code() int {
	return http.StatusNoContent
}

func (r deleteResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r deleteResponse) Empty() bool {
	return true
}

type locationsResponse struct {
	Locations fl.Locations `json:"locations"`
}

func (r locationsResponse) Code() int {
	return http.StatusOK
}

func (r locationsResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r locationsResponse) Empty() bool {
	return false
}

type listSnapshotsResponse struct {
	fl.SnapshotPage
}

func (r listSnapshotsResponse) Code() int {
	return http.StatusOK
}

func (r listSnapshotsResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r listSnapshotsResponse) Empty() bool {
	return false
}

// inferenceResponse is written as returned by the backend.
type inferenceResponse struct {
	raw json.RawMessage
}

func (r inferenceResponse) MarshalJSON() ([]byte, error) {
	if len(r.raw) == 0 {
		return []byte("null"), nil
	}

	return r.raw, nil
}

func (r inferenceResponse) Code() int {
	return http.StatusOK
}

func (r inferenceResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r inferenceResponse) Empty() bool {
	return false
}
