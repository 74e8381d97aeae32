package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/hazyhaar/wdtsmap/pkg/kit"
	"github.com/hazyhaar/wdtsmap/pkg/lab"
	"github.com/hazyhaar/wdtsmap/pkg/resolve"
)

// Shared request/response types used by both HTTP and MCP transports.

// MaxBatch is the largest number of names one batch call may resolve.
const MaxBatch = 100

var errInvalidRequest = errors.New("invalid request")

type resolveReq struct {
	Name string
	Year int
}

type resolveBatchReq struct {
	Names []string
	Year  int
}

type batchResponse struct {
	Year     int               `json:"year"`
	Results  []resolve.Outcome `json:"results"`
	Resolved int               `json:"resolved"`
}

type labsResponse struct {
	Laboratories []*lab.Laboratory `json:"laboratories"`
}

type yearsResponse struct {
	Current   int   `json:"current"`
	Supported []int `json:"supported"`
	Loaded    []int `json:"loaded"`
}

// endpoints are the core kit.Endpoints backed by the service.
type endpoints struct {
	resolve      kit.Endpoint
	resolveBatch kit.Endpoint
	listLabs     kit.Endpoint
	listYears    kit.Endpoint
}

func newEndpoints(svc *Service, mw func(name string) kit.Middleware) endpoints {
	return endpoints{
		resolve:      mw("resolve")(resolveEndpoint(svc)),
		resolveBatch: mw("resolve_batch")(resolveBatchEndpoint(svc)),
		listLabs:     mw("labs")(listLabsEndpoint(svc)),
		listYears:    mw("years")(listYearsEndpoint(svc)),
	}
}

func resolveEndpoint(svc *Service) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*resolveReq)
		if req.Name == "" {
			return nil, fmt.Errorf("%w: missing name", errInvalidRequest)
		}
		return svc.Resolve(req.Name, req.Year)
	}
}

func resolveBatchEndpoint(svc *Service) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*resolveBatchReq)
		if len(req.Names) == 0 {
			return nil, fmt.Errorf("%w: names array is empty", errInvalidRequest)
		}
		if len(req.Names) > MaxBatch {
			return nil, fmt.Errorf("%w: too many names (max %d, got %d)", errInvalidRequest, MaxBatch, len(req.Names))
		}
		year := req.Year
		if year == 0 {
			year = svc.CurrentYear()
		}
		resp := batchResponse{Year: year, Results: make([]resolve.Outcome, len(req.Names))}
		for i, name := range req.Names {
			out, err := svc.Resolve(name, year)
			if err != nil {
				return nil, err
			}
			if out.Found() {
				resp.Resolved++
			}
			resp.Results[i] = out
		}
		return resp, nil
	}
}

func listLabsEndpoint(svc *Service) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return labsResponse{Laboratories: svc.labs.All()}, nil
	}
}

func listYearsEndpoint(svc *Service) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		supported, loaded := svc.Years()
		return yearsResponse{Current: svc.CurrentYear(), Supported: supported, Loaded: loaded}, nil
	}
}
