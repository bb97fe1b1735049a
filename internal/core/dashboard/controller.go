// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dashboard implements the session/form controller: the state
// machine that takes a user from login through video selection, analysis and
// report generation to saving the result.
//
// Every operation runs under the lock of its session, so two requests of
// the same user never interleave. The controller never renders anything; it
// returns values and apperr errors that the API layer maps to responses.
//
// Flow:
//
//	Login -> SelectVideo -> Analyze -> (Modalities) -> GenerateReport -> Save
//
// GenerateReport only needs a selected video, and Save needs both an analyzed
// video and a report.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jaycherian/scope-dashboard/internal/core/apperr"
	"github.com/jaycherian/scope-dashboard/internal/core/commands"
	"github.com/jaycherian/scope-dashboard/internal/core/cor"
	"github.com/jaycherian/scope-dashboard/internal/core/model"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
)

// VideoResolver resolves the videos an identity may view.
type VideoResolver interface {
	Resolve(ctx context.Context, identity string) ([]string, error)
}

// ReportReader reads the pre-computed report store.
type ReportReader interface {
	ReadSummary(ctx context.Context, video string) (string, error)
	ReadFull(ctx context.Context, video string) (model.ReportRecord, error)
}

// DefaultSampleIdentity is suggested to users without assigned videos.
const DefaultSampleIdentity = "test@buffalo.edu"

// Controller drives the dashboard sessions.
type Controller struct {
	Sessions       *services.SessionManager
	Directory      VideoResolver
	Reports        ReportReader
	Analyzer       services.Analyzer
	Videos         services.VideoStore
	Uploads        *services.UploadTracker
	SaveWorkflow   cor.Command // Receives a session snapshot as input.
	UploadWorkflow cor.Command // Receives a *model.UploadRequest as input.
	SampleIdentity string
}

// LoginResult is returned by Login.
type LoginResult struct {
	Identity string   `json:"email"`
	Videos   []string `json:"videos"`
	Hint     string   `json:"hint,omitempty"` // Set when Videos is empty.
}

// Selection is returned by SelectVideo.
type Selection struct {
	Video string `json:"video"`
	Ref   string `json:"ref"` // Where the raw video is stored.
}

// Analysis is returned by Analyze.
type Analysis struct {
	Video         string `json:"video"`
	AnalyzedVideo string `json:"analyzed_video"` // Base name of the analyzed video.
	AnalyzedPath  string `json:"analyzed_path"`
}

// Report is returned by GenerateReport.
type Report struct {
	Video     string `json:"video"`
	Highlight string `json:"highlight"` // First line of Text, trimmed.
	Text      string `json:"text"`
}

// UploadResult is returned by Upload.
type UploadResult struct {
	Filename string             `json:"filename"`
	Location string             `json:"location,omitempty"`
	Skipped  bool               `json:"skipped"` // The same file was already uploaded in this session.
	Status   model.UploadStatus `json:"status"`
}

// StateView is returned by State.
type StateView struct {
	Session      *model.SessionState `json:"session"`
	Stage        model.Stage         `json:"stage"`
	UploadStatus model.UploadStatus  `json:"upload_status,omitempty"`
}

func (c *Controller) sampleIdentity() string {
	if c.SampleIdentity == "" {
		return DefaultSampleIdentity
	}
	return c.SampleIdentity
}

// NoVideosHint is shown to an identity without assigned videos.
func (c *Controller) NoVideosHint() string {
	return fmt.Sprintf("Use %s to view a sample video. For more videos, please contact the admin.", c.sampleIdentity())
}

func requireLogin(state *model.SessionState) error {
	if state.Identity == "" {
		return apperr.New(apperr.PreconditionNotMet, "please enter your email first")
	}
	return nil
}

func requireVideo(state *model.SessionState) error {
	if err := requireLogin(state); err != nil {
		return err
	}
	if state.SelectedVideo == "" {
		return apperr.New(apperr.PreconditionNotMet, "please select a video first")
	}
	return nil
}

// Login sets the session identity and resolves its videos. A different
// identity discards the selection, analysis and report of the previous one.
// If the directory cannot be read the session is left unchanged.
func (c *Controller) Login(ctx context.Context, sessionID string, identity string) (*LoginResult, error) {
	if identity == "" {
		return nil, apperr.New(apperr.ValidationError, "please enter an email")
	}
	var out *LoginResult
	err := c.Sessions.Do(sessionID, func(state *model.SessionState) error {
		videos, err := c.Directory.Resolve(ctx, identity)
		if err != nil {
			return err
		}
		if state.Identity != identity {
			state.ResetIdentity()
			state.Identity = identity
		}
		state.Videos = videos
		if state.SelectedVideo != "" && !state.HasVideo(state.SelectedVideo) {
			state.SelectedVideo = ""
			state.ResetAnalysis()
		}
		out = &LoginResult{Identity: identity, Videos: append([]string(nil), videos...)}
		if len(videos) == 0 {
			out.Videos = make([]string, 0)
			out.Hint = c.NoVideosHint()
		}
		return nil
	})
	if err == nil {
		slog.InfoContext(ctx, "login", "session", sessionID, "videos", len(out.Videos))
	}
	return out, err
}

// SelectVideo chooses one of the resolved videos. Choosing a different video
// discards the analysis and report of the previous one.
func (c *Controller) SelectVideo(ctx context.Context, sessionID string, video string) (*Selection, error) {
	var out *Selection
	err := c.Sessions.Do(sessionID, func(state *model.SessionState) error {
		if err := requireLogin(state); err != nil {
			return err
		}
		if !state.HasVideo(video) {
			return apperr.Newf(apperr.ValidationError, "video %q is not available for %s", video, state.Identity)
		}
		if state.SelectedVideo != video {
			state.ResetAnalysis()
			state.SelectedVideo = video
		}
		out = &Selection{Video: video, Ref: c.Videos.Ref(video)}
		return nil
	})
	return out, err
}

// Analyze runs the Analyzer on the selected video and enables the
// multimodal views.
func (c *Controller) Analyze(ctx context.Context, sessionID string) (*Analysis, error) {
	var out *Analysis
	err := c.Sessions.Do(sessionID, func(state *model.SessionState) error {
		if err := requireVideo(state); err != nil {
			return err
		}
		analyzed, err := c.Analyzer.Analyze(ctx, c.Videos.Ref(state.SelectedVideo))
		if err != nil {
			var classified *apperr.Error
			if errors.As(err, &classified) {
				return err
			}
			return apperr.Wrap(apperr.Internal, err, "the video could not be analyzed")
		}
		state.AnalyzedVideoPath = analyzed
		state.ShowAnalysisTabs = true
		out = &Analysis{Video: state.SelectedVideo, AnalyzedVideo: filepath.Base(analyzed), AnalyzedPath: analyzed}
		return nil
	})
	return out, err
}

// Modalities returns the AU, VA, eye blink and gaze views of the analyzed
// video.
func (c *Controller) Modalities(ctx context.Context, sessionID string) ([]model.Modality, error) {
	var out []model.Modality
	err := c.Sessions.Do(sessionID, func(state *model.SessionState) error {
		if err := requireVideo(state); err != nil {
			return err
		}
		if !state.ShowAnalysisTabs {
			return apperr.New(apperr.PreconditionNotMet, "please analyze the video first")
		}
		record, err := c.Reports.ReadFull(ctx, state.SelectedVideo)
		if err != nil {
			return err
		}
		out = model.BuildModalities(state.SelectedVideo, record)
		return nil
	})
	return out, err
}

// GenerateReport loads the text report of the selected video.
func (c *Controller) GenerateReport(ctx context.Context, sessionID string) (*Report, error) {
	var out *Report
	err := c.Sessions.Do(sessionID, func(state *model.SessionState) error {
		if err := requireVideo(state); err != nil {
			return err
		}
		text, err := c.Reports.ReadSummary(ctx, state.SelectedVideo)
		if err != nil {
			return err
		}
		state.ReportText = text
		out = &Report{Video: state.SelectedVideo, Highlight: model.ReportHighlight(text), Text: text}
		return nil
	})
	return out, err
}

// Save appends one row for the session to the output log.
func (c *Controller) Save(ctx context.Context, sessionID string) (*model.OutputLogRow, error) {
	var out *model.OutputLogRow
	err := c.Sessions.Do(sessionID, func(state *model.SessionState) error {
		chainCtx := cor.NewBaseContext(ctx)
		defer chainCtx.Close()
		chainCtx.Add(cor.CtxIn, state.Clone())

		c.SaveWorkflow.Execute(chainCtx)
		if err := chainCtx.Err(); err != nil {
			return err
		}
		out, _ = chainCtx.Get(commands.GetOutputRowParameterName()).(*model.OutputLogRow)
		return nil
	})
	if err == nil {
		slog.InfoContext(ctx, "result saved", "session", sessionID, "video", out.OriginalVideo)
	}
	return out, err
}

// Upload stores a video under its base name. Uploading the same file name
// twice in a session writes it only once.
func (c *Controller) Upload(ctx context.Context, sessionID string, filename string, content io.Reader) (*UploadResult, error) {
	base, err := services.CleanMediaName(filename)
	if err != nil {
		return nil, err
	}
	var out *UploadResult
	err = c.Sessions.Do(sessionID, func(state *model.SessionState) error {
		if state.UploadedFilename == base {
			out = &UploadResult{Filename: base, Skipped: true, Status: c.Uploads.Status(base)}
			return nil
		}

		chainCtx := cor.NewBaseContext(ctx)
		defer chainCtx.Close()

		spooled, err := spool(content)
		if err != nil {
			return apperr.Wrap(apperr.Internal, err, "the upload could not be received")
		}
		chainCtx.AddTempFile(spooled)
		chainCtx.Add(cor.CtxIn, &model.UploadRequest{Filename: base, LocalPath: spooled, Identity: state.Identity})

		c.UploadWorkflow.Execute(chainCtx)
		if err := chainCtx.Err(); err != nil {
			return err
		}
		state.UploadedFilename = base
		ref, _ := chainCtx.Get(commands.ParamStoredRef).(string)
		out = &UploadResult{Filename: base, Location: ref, Status: c.Uploads.Status(base)}
		return nil
	})
	return out, err
}

// spool copies content to a temporary file and returns its path.
func spool(content io.Reader) (path string, err error) {
	f, err := os.CreateTemp("", "scope-upload-*")
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = io.Copy(f, content); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// State returns a snapshot of the session.
func (c *Controller) State(_ context.Context, sessionID string) (*StateView, error) {
	snapshot, err := c.Sessions.Snapshot(sessionID)
	if err != nil {
		return nil, err
	}
	view := &StateView{Session: snapshot, Stage: snapshot.Stage()}
	if snapshot.UploadedFilename != "" {
		view.UploadStatus = c.Uploads.Status(snapshot.UploadedFilename)
	}
	return view, nil
}

// Logout discards the session. Logging out of an unknown session is not an
// error.
func (c *Controller) Logout(ctx context.Context, sessionID string) {
	if c.Sessions.Delete(sessionID) {
		slog.InfoContext(ctx, "logout", "session", sessionID)
	}
}
