package api

import (
	"errors"

	"github.com/absmach/fldash/dashboard"
	"github.com/absmach/fldash/pkg/api"
	"github.com/absmach/fldash/pkg/fl"
	"github.com/absmach/fldash/pkg/metrics"
	apiutil "github.com/absmach/supermq/api/http/util"
)

var (
	errMissingPassword  = errors.New("missing password")
	errMissingModelFile = errors.New("missing model file")
	errEmptyInference   = errors.New("empty inference request")
)

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (req loginReq) validate() error {
	if req.Username == "" {
		return apiutil.ErrMissingName
	}
	if req.Password == "" {
		return errMissingPassword
	}

	return nil
}

type tokenReq struct {
	token string
}

func (req tokenReq) validate() error {
	if req.token == "" {
		return apiutil.ErrBearerToken
	}

	return nil
}

type entityReq struct {
	token string
	id    string
}

func (req entityReq) validate() error {
	if req.token == "" {
		return apiutil.ErrBearerToken
	}
	if req.id == "" {
		return apiutil.ErrMissingID
	}

	return nil
}

type listEntityReq struct {
	token         string
	offset, limit uint64
}

func (req listEntityReq) validate() error {
	if req.token == "" {
		return apiutil.ErrBearerToken
	}
	if req.limit > api.MaxLimitSize {
		return apiutil.ErrLimitSize
	}

	return nil
}

type modelReq struct {
	token string
	model fl.Model
	file  fl.ModelFile
}

func (req modelReq) validate() error {
	if req.token == "" {
		return apiutil.ErrBearerToken
	}
	if len(req.file.Data) == 0 {
		return errMissingModelFile
	}

	return nil
}

type trainingReq struct {
	token       string
	fl.Training `json:",inline"`
}

func (req trainingReq) validate() error {
	if req.token == "" {
		return apiutil.ErrBearerToken
	}
	if req.ModelID == "" {
		return apiutil.ErrMissingID
	}
	if _, err := fl.ParseAggregationMethod(string(req.AggregationMethod)); err != nil {
		return err
	}

	return nil
}

type inferenceReq struct {
	token string
	body  map[string]any
}

func (req inferenceReq) validate() error {
	if req.token == "" {
		return apiutil.ErrBearerToken
	}
	if len(req.body) == 0 {
		return errEmptyInference
	}

	return nil
}

type chartReq struct {
	token         string
	modelID       string
	key           string
	selection     metrics.Selection
	width, height int
}

func (req chartReq) validate() error {
	if req.token == "" {
		return apiutil.ErrBearerToken
	}
	if req.modelID == "" {
		return apiutil.ErrMissingID
	}
	if req.key == "" {
		return apiutil.ErrMissingName
	}
	if req.width < 0 || req.width > dashboard.MaxChartWidth || req.height < 0 || req.height > dashboard.MaxChartHeight {
		return apiutil.ErrLimitSize
	}

	return nil
}
