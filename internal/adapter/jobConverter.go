package adapter

import (
	"fmt"
	"time"

	"github.com/qafarov/agribot/internal/api"
	"github.com/qafarov/agribot/internal/domain/commonModels"
	"github.com/qafarov/agribot/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:              string(job.Status),
		RAGExternalResponse: ToRAGExternalStatus(job.JobPayload),
	}
	if job.JobType == jobModel.JobTypeIngest {
		result.IngestReport = ToIngestReport(job.JobPayload)
	}

	return api.JobResponse{
		Id:        job.Id,
		ChatId:    job.ChatId,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToRAGExternalStatus(ragData jobModel.JobPayload) *api.RAGResponse {
	if ragData.Answer == "" && len(ragData.Sources) == 0 {
		return nil
	}

	return &api.RAGResponse{
		Question: ragData.Question,
		Answer:   ragData.Answer,
		Sources:  ragData.Sources,
	}
}

func ToIngestReport(payload jobModel.JobPayload) *api.IngestReport {
	return &api.IngestReport{
		ChunksStored:    payload.ChunksStored,
		EntitiesStored:  payload.EntitiesStored,
		EdgesStored:     payload.EdgesStored,
		EdgesSkipped:    payload.EdgesSkipped,
		FallbackVectors: payload.FallbackVectors,
	}
}

func ToGraphLookupResponse(query string, matches []commonModels.EntityMatch) api.GraphLookupResponse {
	out := api.GraphLookupResponse{
		Query:   query,
		Matches: make([]api.EntityMatchResponse, 0, len(matches)),
	}
	for _, match := range matches {
		out.Matches = append(out.Matches, api.EntityMatchResponse{
			Entity:          match.Name,
			Types:           match.Types,
			RelatedEntities: match.Related,
		})
	}
	return out
}

func ToStatsResponse(stats commonModels.Stats) api.StatsResponse {
	return api.StatsResponse{
		GraphNodes:         stats.GraphNodes,
		GraphRelationships: stats.GraphRelationships,
		Vectors:            stats.Vectors,
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		ChatId:    "",
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status:              string(api.JobStatusError),
			RAGExternalResponse: ToRAGExternalStatus(jobModel.JobPayload{}),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
