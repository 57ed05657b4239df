package validators

import (
	"context"
	"unicode/utf8"

	"github.com/anonto42/tweetline/backend/internal/models"
)

const MaxContentLength = 280

// TweetTypeMessages are reported when a tweet body field has the wrong JSON type.
var TweetTypeMessages = map[string]any{
	"type":     []string{"Type must be a string"},
	"parentId": []string{"Parent Tweet ID must be a string"},
	"content":  []string{"Content must be a string"},
}

// CreateTweetChain validates POST /tweets bodies.
func CreateTweetChain(v *Validator) Chain[models.CreateTweetRequest] {
	return NewChain(
		tweetRequired,
		tweetTypes,
		func(_ context.Context, req *models.CreateTweetRequest) *Failure {
			return contentLength(req.Content)
		},
		func(_ context.Context, req *models.CreateTweetRequest) *Failure {
			if !blank(req.ParentID) && !v.IsUUID(*req.ParentID) {
				return FailAll([]string{"Parent Tweet ID must be a UUID"})
			}
			return nil
		},
	)
}

// UpdateTweetChain validates PATCH /tweets/:id bodies.
func UpdateTweetChain() Chain[models.UpdateTweetRequest] {
	return NewChain(
		func(_ context.Context, req *models.UpdateTweetRequest) *Failure {
			if blank(req.Content) {
				return FailAll([]string{"Content is required"})
			}
			return nil
		},
		func(_ context.Context, req *models.UpdateTweetRequest) *Failure {
			return contentLength(req.Content)
		},
	)
}

func tweetRequired(_ context.Context, req *models.CreateTweetRequest) *Failure {
	var errs []string
	tweetType := models.TweetType(deref(req.Type))
	hasParent := !blank(req.ParentID)

	if blank(req.Type) {
		errs = append(errs, "Tweet type is required")
	}
	if tweetType.NeedsParent() && !hasParent {
		errs = append(errs, "Parent Tweet ID is required for REPLY or RETWEET")
	}
	if tweetType == models.TweetTypeTweet && hasParent {
		errs = append(errs, "Parent Tweed ID is only valid for RETWEET or REPLY")
	}
	if (tweetType == models.TweetTypeTweet || tweetType == models.TweetTypeReply) && blank(req.Content) {
		errs = append(errs, "Content is required")
	}
	return FailAll(errs)
}

func tweetTypes(_ context.Context, req *models.CreateTweetRequest) *Failure {
	if !models.TweetType(deref(req.Type)).Valid() {
		return FailAll([]string{"Type must be TWEET, REPLY or RETWEET"})
	}
	return nil
}

func contentLength(content *string) *Failure {
	if content != nil && utf8.RuneCountInString(*content) > MaxContentLength {
		return Fail("Content exceeds the maximum allowed length of 280 characters")
	}
	return nil
}
