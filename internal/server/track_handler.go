// Package server exposes the track service over Connect with JSON messages.
package server

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"

	"github.com/palimpseste/palimpseste/internal/chapter"
	"github.com/palimpseste/palimpseste/internal/concept"
	"github.com/palimpseste/palimpseste/internal/confirm"
	"github.com/palimpseste/palimpseste/internal/passage"
	"github.com/palimpseste/palimpseste/internal/track"
)

// TrackServiceName is the fully-qualified name of the track service.
const TrackServiceName = "palimpseste.v1.TrackService"

type TrackRequest struct {
	TrackID string `json:"trackId" validate:"required"`
}

type TrackResponse struct {
	Track track.Track `json:"track"`
}

type ListTracksRequest struct{}

type ListTracksResponse struct {
	Tracks []track.Track `json:"tracks"`
}

type CreateTrackRequest struct {
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description"`
	Level         string `json:"level" validate:"required"`
	ChaptersCount int    `json:"chaptersCount" validate:"gte=1"`
}

type UploadDocumentRequest struct {
	TrackID  string `json:"trackId" validate:"required"`
	FileName string `json:"fileName" validate:"required"`
	// Content is base64 encoded in JSON.
	Content []byte `json:"content" validate:"required"`
}

type PassageRequest struct {
	TrackID   string `json:"trackId" validate:"required"`
	PassageID string `json:"passageId" validate:"required"`
}

type EditPassageRequest struct {
	TrackID   string `json:"trackId" validate:"required"`
	PassageID string `json:"passageId" validate:"required"`
	Text      string `json:"text"`
}

type SplitPassageRequest struct {
	TrackID   string `json:"trackId" validate:"required"`
	PassageID string `json:"passageId" validate:"required"`
	Cut       int    `json:"cut"`
}

type MovePassageRequest struct {
	TrackID   string `json:"trackId" validate:"required"`
	PassageID string `json:"passageId" validate:"required"`
	Direction string `json:"direction" validate:"required"`
}

// UpdateChapterRequest changes the fields that are present and leaves the others untouched.
type UpdateChapterRequest struct {
	TrackID    string  `json:"trackId" validate:"required"`
	ChapterID  string  `json:"chapterId" validate:"required"`
	Title      *string `json:"title,omitempty"`
	Objectives *string `json:"objectives,omitempty"`
	Status     *string `json:"status,omitempty"`
}

type MoveChapterRequest struct {
	TrackID   string `json:"trackId" validate:"required"`
	ChapterID string `json:"chapterId" validate:"required"`
	Direction string `json:"direction" validate:"required"`
}

type ExtractConceptsResponse struct {
	Track    track.Track `json:"track"`
	Detected int         `json:"detected"`
}

type SetConceptStatusRequest struct {
	TrackID   string `json:"trackId" validate:"required"`
	ConceptID string `json:"conceptId" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

type ConceptPassageRequest struct {
	TrackID   string `json:"trackId" validate:"required"`
	ConceptID string `json:"conceptId" validate:"required"`
	PassageID string `json:"passageId" validate:"required"`
}

// ConfirmationResponse is the decision of the confirmation policy.
type ConfirmationResponse = confirm.Decision

type CheckConfirmationRequest struct {
	TrackID   string `json:"trackId" validate:"required"`
	Operation string `json:"operation" validate:"required"`
	PassageID string `json:"passageId"`
}

// TrackHandler implements the track service procedures.
type TrackHandler struct {
	service *track.Service
}

// NewTrackHandler creates a new TrackHandler.
func NewTrackHandler(service *track.Service) *TrackHandler {
	return &TrackHandler{service: service}
}

// NewTrackServiceHandler builds an http.Handler serving every procedure of h, and the path to mount it on.
func NewTrackServiceHandler(h *TrackHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	mux := http.NewServeMux()

	handle := func(method string, handler http.Handler) {
		mux.Handle(procedure(method), handler)
	}
	handle("ListTracks", connect.NewUnaryHandler(procedure("ListTracks"), h.ListTracks, opts...))
	handle("GetTrack", connect.NewUnaryHandler(procedure("GetTrack"), h.GetTrack, opts...))
	handle("CreateTrack", connect.NewUnaryHandler(procedure("CreateTrack"), h.CreateTrack, opts...))
	handle("UploadDocument", connect.NewUnaryHandler(procedure("UploadDocument"), h.UploadDocument, opts...))
	handle("SegmentTrack", connect.NewUnaryHandler(procedure("SegmentTrack"), h.SegmentTrack, opts...))
	handle("EditPassage", connect.NewUnaryHandler(procedure("EditPassage"), h.EditPassage, opts...))
	handle("SplitPassage", connect.NewUnaryHandler(procedure("SplitPassage"), h.SplitPassage, opts...))
	handle("MergePassage", connect.NewUnaryHandler(procedure("MergePassage"), h.MergePassage, opts...))
	handle("MovePassage", connect.NewUnaryHandler(procedure("MovePassage"), h.MovePassage, opts...))
	handle("DeletePassage", connect.NewUnaryHandler(procedure("DeletePassage"), h.DeletePassage, opts...))
	handle("UpdateChapter", connect.NewUnaryHandler(procedure("UpdateChapter"), h.UpdateChapter, opts...))
	handle("MoveChapter", connect.NewUnaryHandler(procedure("MoveChapter"), h.MoveChapter, opts...))
	handle("ExtractConcepts", connect.NewUnaryHandler(procedure("ExtractConcepts"), h.ExtractConcepts, opts...))
	handle("SetConceptStatus", connect.NewUnaryHandler(procedure("SetConceptStatus"), h.SetConceptStatus, opts...))
	handle("LinkConceptPassage", connect.NewUnaryHandler(procedure("LinkConceptPassage"), h.LinkConceptPassage, opts...))
	handle("UnlinkConceptPassage", connect.NewUnaryHandler(procedure("UnlinkConceptPassage"), h.UnlinkConceptPassage, opts...))
	handle("CheckConfirmation", connect.NewUnaryHandler(procedure("CheckConfirmation"), h.CheckConfirmation, opts...))

	return "/" + TrackServiceName + "/", mux
}

func procedure(method string) string {
	return fmt.Sprintf("/%s/%s", TrackServiceName, method)
}

func (h *TrackHandler) ListTracks(
	ctx context.Context,
	req *connect.Request[ListTracksRequest],
) (*connect.Response[ListTracksResponse], error) {
	tracks, err := h.service.List(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListTracksResponse{Tracks: tracks}), nil
}

func (h *TrackHandler) GetTrack(
	ctx context.Context,
	req *connect.Request[TrackRequest],
) (*connect.Response[TrackResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	return trackResponse(h.service.Get(ctx, req.Msg.TrackID))
}

func (h *TrackHandler) CreateTrack(
	ctx context.Context,
	req *connect.Request[CreateTrackRequest],
) (*connect.Response[TrackResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	level, err := track.ParseLevel(req.Msg.Level)
	if err != nil {
		return nil, toConnectError(err)
	}
	return trackResponse(h.service.Create(ctx, track.CreateParams{
		Title:         req.Msg.Title,
		Description:   req.Msg.Description,
		Level:         level,
		ChaptersCount: req.Msg.ChaptersCount,
	}))
}

// UploadDocument attaches a file to the track. An extraction failure is reported in the document status.
func (h *TrackHandler) UploadDocument(
	ctx context.Context,
	req *connect.Request[UploadDocumentRequest],
) (*connect.Response[TrackResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	return trackResponse(h.service.UploadDocument(ctx, req.Msg.TrackID, req.Msg.FileName, req.Msg.Content))
}

func (h *TrackHandler) SegmentTrack(
	ctx context.Context,
	req *connect.Request[TrackRequest],
) (*connect.Response[TrackResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	return trackResponse(h.service.Segment(ctx, req.Msg.TrackID))
}

func (h *TrackHandler) EditPassage(
	ctx context.Context,
	req *connect.Request[EditPassageRequest],
) (*connect.Response[TrackResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	return trackResponse(h.service.EditPassage(ctx, req.Msg.TrackID, req.Msg.PassageID, req.Msg.Text))
}

func (h *TrackHandler) SplitPassage(
	ctx context.Context,
	req *connect.Request[SplitPassageRequest],
) (*connect.Response[TrackResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	return trackResponse(h.service.SplitPassage(ctx, req.Msg.TrackID, req.Msg.PassageID, req.Msg.Cut))
}

func (h *TrackHandler) MergePassage(
	ctx context.Context,
	req *connect.Request[PassageRequest],
) (*connect.Response[TrackResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	return trackResponse(h.service.MergePassage(ctx, req.Msg.TrackID, req.Msg.PassageID))
}

func (h *TrackHandler) MovePassage(
	ctx context.Context,
	req *connect.Request[MovePassageRequest],
) (*connect.Response[TrackResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	direction, err := passage.ParseDirection(req.Msg.Direction)
	if err != nil {
		return nil, toConnectError(fmt.Errorf("%w: %w", errInvalidDirection, err))
	}
	return trackResponse(h.service.MovePassage(ctx, req.Msg.TrackID, req.Msg.PassageID, direction))
}

func (h *TrackHandler) DeletePassage(
	ctx context.Context,
	req *connect.Request[PassageRequest],
) (*connect.Response[TrackResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	return trackResponse(h.service.DeletePassage(ctx, req.Msg.TrackID, req.Msg.PassageID))
}

func (h *TrackHandler) UpdateChapter(
	ctx context.Context,
	req *connect.Request[UpdateChapterRequest],
) (*connect.Response[TrackResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	update := chapter.Update{Title: req.Msg.Title, Objectives: req.Msg.Objectives}
	if req.Msg.Status != nil {
		status, err := chapter.ParseStatus(*req.Msg.Status)
		if err != nil {
			return nil, toConnectError(err)
		}
		update.Status = &status
	}
	return trackResponse(h.service.UpdateChapter(ctx, req.Msg.TrackID, req.Msg.ChapterID, update))
}

func (h *TrackHandler) MoveChapter(
	ctx context.Context,
	req *connect.Request[MoveChapterRequest],
) (*connect.Response[TrackResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	direction, err := passage.ParseDirection(req.Msg.Direction)
	if err != nil {
		return nil, toConnectError(fmt.Errorf("%w: %w", errInvalidDirection, err))
	}
	return trackResponse(h.service.MoveChapter(ctx, req.Msg.TrackID, req.Msg.ChapterID, direction))
}

func (h *TrackHandler) ExtractConcepts(
	ctx context.Context,
	req *connect.Request[TrackRequest],
) (*connect.Response[ExtractConceptsResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	t, detected, err := h.service.ExtractConcepts(ctx, req.Msg.TrackID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ExtractConceptsResponse{Track: t, Detected: detected}), nil
}

func (h *TrackHandler) SetConceptStatus(
	ctx context.Context,
	req *connect.Request[SetConceptStatusRequest],
) (*connect.Response[TrackResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	status, err := concept.ParseStatus(req.Msg.Status)
	if err != nil {
		return nil, toConnectError(err)
	}
	return trackResponse(h.service.SetConceptStatus(ctx, req.Msg.TrackID, req.Msg.ConceptID, status))
}

func (h *TrackHandler) LinkConceptPassage(
	ctx context.Context,
	req *connect.Request[ConceptPassageRequest],
) (*connect.Response[TrackResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	return trackResponse(h.service.LinkConceptPassage(ctx, req.Msg.TrackID, req.Msg.ConceptID, req.Msg.PassageID))
}

func (h *TrackHandler) UnlinkConceptPassage(
	ctx context.Context,
	req *connect.Request[ConceptPassageRequest],
) (*connect.Response[TrackResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	return trackResponse(h.service.UnlinkConceptPassage(ctx, req.Msg.TrackID, req.Msg.ConceptID, req.Msg.PassageID))
}

// CheckConfirmation tells the client whether to ask the user before running an operation.
func (h *TrackHandler) CheckConfirmation(
	ctx context.Context,
	req *connect.Request[CheckConfirmationRequest],
) (*connect.Response[ConfirmationResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	decision, err := h.service.Confirmation(ctx, req.Msg.TrackID, confirm.Operation(req.Msg.Operation), req.Msg.PassageID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&decision), nil
}

func trackResponse(t track.Track, err error) (*connect.Response[TrackResponse], error) {
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&TrackResponse{Track: t}), nil
}
