package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Simi129/pinterest-backend/internal/model"
	"github.com/Simi129/pinterest-backend/internal/pinterest"
	"github.com/Simi129/pinterest-backend/internal/repository"
)

// Publisher performs the one publish attempt a post gets: it loads the post
// and a fresh credential, calls the Pinterest create-pin operation, and
// settles the post into its terminal status. It runs detached from any
// request, so failures terminate in a status update instead of an error
// return. There is no automatic retry; re-submission is the caller's call.
type Publisher struct {
	postRepo  repository.PostRepository
	connSvc   *ConnectionService
	pinClient *pinterest.Client
}

func NewPublisher(
	postRepo repository.PostRepository,
	connSvc *ConnectionService,
	pinClient *pinterest.Client,
) *Publisher {
	return &Publisher{
		postRepo:  postRepo,
		connSvc:   connSvc,
		pinClient: pinClient,
	}
}

func (p *Publisher) Publish(ctx context.Context, postID, userID string) {
	p.publish(ctx, postID, userID, false)
}

// PublishClaimed publishes a post the caller has already moved from
// scheduled to publishing; the claim is not retaken.
func (p *Publisher) PublishClaimed(ctx context.Context, postID, userID string) {
	p.publish(ctx, postID, userID, true)
}

func (p *Publisher) publish(ctx context.Context, postID, userID string, alreadyClaimed bool) {
	post, err := p.postRepo.FindByID(ctx, postID)
	if err != nil {
		log.Error().Err(err).Str("postId", postID).Msg("publish: load post failed")
		return
	}
	if post == nil {
		log.Warn().Str("postId", postID).Msg("publish: post not found")
		return
	}

	if post.Status.Terminal() {
		log.Debug().
			Str("postId", postID).
			Str("status", string(post.Status)).
			Msg("publish: post already settled")
		return
	}

	// A deferred post must win the scheduled -> publishing claim before the
	// API call. Concurrent triggers (in-process timer vs reconcile sweep)
	// race on the claim; the loser skips even when it observes the post
	// already in publishing, since that publishing belongs to the winner.
	if !alreadyClaimed && (post.Status == model.PostStatusScheduled || post.ScheduledAt != nil) {
		claimed, err := p.postRepo.ClaimForPublishing(ctx, postID)
		if err != nil {
			log.Error().Err(err).Str("postId", postID).Msg("publish: claim failed")
			return
		}
		if !claimed {
			log.Debug().Str("postId", postID).Msg("publish: claimed elsewhere, skipping")
			return
		}
	}

	conn, err := p.connSvc.Fresh(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotConnected):
			p.fail(ctx, postID, "pinterest not connected")
		case errors.Is(err, ErrTokenRefreshFailed):
			p.fail(ctx, postID, "pinterest token expired")
		default:
			log.Error().Err(err).Str("postId", postID).Msg("publish: load connection failed")
			p.fail(ctx, postID, "failed to load pinterest connection")
		}
		return
	}

	// Defensive re-check; request validation should make this unreachable.
	media, ok := mediaSourceFor(post)
	if !ok {
		p.fail(ctx, postID, "no image provided")
		return
	}

	params := pinterest.CreatePinParams{
		BoardID:     post.BoardID,
		MediaSource: media,
		Title:       post.Title,
	}
	if post.Description != nil {
		params.Description = *post.Description
	}
	if post.Link != nil {
		params.Link = *post.Link
	}

	pin, err := p.pinClient.CreatePin(ctx, conn.AccessToken, params)
	if err != nil {
		log.Error().Err(err).Str("postId", postID).Msg("publish: create pin failed")
		p.fail(ctx, postID, publishErrorMessage(err))
		return
	}

	updated, err := p.postRepo.UpdateStatus(ctx, postID, model.PostStatusPublished, &pin.ID, nil)
	if err != nil {
		log.Error().Err(err).Str("postId", postID).Msg("publish: record published status failed")
		return
	}
	if !updated {
		log.Warn().Str("postId", postID).Msg("publish: post settled concurrently")
		return
	}

	log.Info().
		Str("postId", postID).
		Str("pinId", pin.ID).
		Msg("post published")
}

func (p *Publisher) fail(ctx context.Context, postID, message string) {
	updated, err := p.postRepo.UpdateStatus(ctx, postID, model.PostStatusFailed, nil, &message)
	if err != nil {
		log.Error().Err(err).Str("postId", postID).Msg("publish: record failed status failed")
		return
	}
	if updated {
		log.Warn().Str("postId", postID).Str("reason", message).Msg("post failed")
	}
}

// mediaSourceFor picks the pin payload: inline image data wins over the
// remote URL when both are somehow present.
func mediaSourceFor(post *model.Post) (pinterest.MediaSource, bool) {
	if post.ImageBase64 != nil && *post.ImageBase64 != "" {
		return pinterest.MediaFromBase64(*post.ImageBase64), true
	}
	if post.ImageURL != nil && *post.ImageURL != "" {
		return pinterest.MediaFromURL(*post.ImageURL), true
	}
	return pinterest.MediaSource{}, false
}

func publishErrorMessage(err error) string {
	var apiErr *pinterest.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return "pinterest request failed: " + err.Error()
}
