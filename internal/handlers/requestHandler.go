package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/qafarov/agribot/internal/adapter"
	"github.com/qafarov/agribot/internal/adapter/utils"
	"github.com/qafarov/agribot/internal/api"
	"github.com/qafarov/agribot/internal/config"
	"github.com/qafarov/agribot/pkg/logger_i"
)

var logRH *logger_i.Logger

// carries everything needed to enqueue one job, whatever its type
type newJobData struct {
	id               string
	chatId           string
	message          string
	isNewChat        bool
	traceId          string
	isDocumentIngest bool
	documentName     string
	documentSource   string
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// ChatHandler godoc
// @Summary      Ask a question
// @Description  Accepts a question, initializes a background retrieval job, and returns a job ID to track status.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest      true  "Question and optional Chat ID"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data or chat ID"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {

	if validateContext(request.Context()) {

		var requestData api.ChatRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the Chat handler reader :", "err", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !ValidateChatRequest(requestData) {

			logRH.Warn("Bad Chat Request: ", "error:", err, "request data:", requestData)
			WriteErrorResponse(w, http.StatusBadRequest, requestData.ChatID, "Bad Request")
			return
		}
		processNewJobData(request, w, requestData, "", "")
		return
	}
	logRH.Warn("Invalid Context by request ", "remote", request.RemoteAddr)
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID "
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}

// PostIngestHandler handles the uploading of PDF or DOCX documents for ingestion.
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data, saves it to a temporary directory, and queues an ingestion job.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        document_name  formData  string  true  "The display name of the document"
// @Param        document       formData  file    true  "The PDF, DOCX or TXT file to upload"
// @Success      202  {object}  api.InitJobResponse "Accepted - returns job_id"
// @Failure      400  {object}  api.JobResponse "Bad Request - Missing fields or file too large"
// @Failure      500  {object}  api.JobResponse "Internal Server Error - Storage or Write Error"
// @Router       /ingest [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		targetDir, errString := getTargetDirectory()

		if errString != "" {
			logRH.Error("Couldn't get target directory :", "err", errString)
			WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
			return
		}

		const maxUploadSize = 32 << 20 //32mb
		err := r.ParseMultipartForm(maxUploadSize)
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
			return
		}

		docName := r.FormValue("document_name")
		if docName == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "", "document_name is required")
			return
		}

		fileReader, fileMetadata, err := r.FormFile("document")
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, docName, "Could not retrieve file")
			return
		}
		defer fileReader.Close()

		filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
		tempFilePath := filepath.Join(targetDir, filename)
		destinationFileWriter, err := os.Create(tempFilePath)
		if err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
			return
		}
		defer destinationFileWriter.Close()

		if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, docName, "Write error")
			return
		}
		processNewJobData(r, w, api.ChatRequest{}, docName, tempFilePath)
		return
	}
	logRH.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
}

// GraphLookupHandler godoc
// @Summary      Look up an entity in the knowledge graph
// @Description  Finds entities whose name contains the given string, with their types and direct neighbours.
// @Tags         Graph
// @Produce      json
// @Param        name  path      string  true  "Entity name or fragment"
// @Success      200   {object}  api.GraphLookupResponse
// @Failure      503   {object}  api.JobResponse "Graph store unavailable"
// @Router       /graph/{name} [get]
func GraphLookupHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		name := strings.TrimSpace(utils.GetChiURLParam(r, "name"))
		if name == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "", "entity name is required")
			return
		}

		matches, err := handlerInstance.ragService.LookupEntity(r.Context(), name)
		if err != nil {
			logRH.Error("Graph lookup failed", "entity", name, "err", err)
			WriteErrorResponse(w, http.StatusServiceUnavailable, name, "Graph store unavailable")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToGraphLookupResponse(name, matches))
	}
}

// StatsHandler godoc
// @Summary      Knowledge base statistics
// @Description  Reports the number of graph nodes, graph relationships and stored vectors.
// @Tags         Stats
// @Produce      json
// @Success      200  {object}  api.StatsResponse
// @Failure      503  {object}  api.JobResponse "Stores unavailable"
// @Router       /stats [get]
func StatsHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		stats, err := handlerInstance.ragService.Statistics(r.Context())
		if err != nil {
			logRH.Error("Statistics collection failed", "err", err)
			WriteErrorResponse(w, http.StatusServiceUnavailable, "", "Stores unavailable")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToStatsResponse(stats))
	}
}
