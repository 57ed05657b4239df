package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/tweetline/backend/internal/metrics"
	"github.com/anonto42/tweetline/backend/internal/models"
	"github.com/anonto42/tweetline/backend/internal/repositories"
	"go.uber.org/zap"
)

const (
	defaultTake = 10
	maxTake     = 50
)

// LikeInput toggles UserID's like on TweetID.
type LikeInput struct {
	TweetID string
	UserID  string
}

type CreateTweetInput struct {
	UserID   string
	Type     models.TweetType
	ParentID *string
	Content  *string
}

type UpdateTweetInput struct {
	ID      string
	ActorID string
	Content string
}

type TweetService struct {
	tweets  repositories.TweetRepository
	likes   repositories.LikeRepository
	users   repositories.UserRepository
	follows repositories.FollowRepository
	tx      repositories.Transactor
	notify  Notifier
	logger  *zap.Logger
}

func NewTweetService(
	tweets repositories.TweetRepository,
	likes repositories.LikeRepository,
	users repositories.UserRepository,
	follows repositories.FollowRepository,
	tx repositories.Transactor,
	notify Notifier,
	logger *zap.Logger,
) *TweetService {
	if notify == nil {
		notify = noopNotifier{}
	}
	return &TweetService{tweets: tweets, likes: likes, users: users, follows: follows, tx: tx, notify: notify, logger: logger}
}

// Like creates the like edge when it is absent and removes it otherwise.
func (s *TweetService) Like(ctx context.Context, in LikeInput) Result {
	var result Result
	var authorID string
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.users.GetUserByID(ctx, in.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			result = Failure(http.StatusNotFound, "User not found")
			return nil
		}
		tweet, err := s.tweets.GetTweetByID(ctx, in.TweetID)
		if err != nil {
			return err
		}
		if tweet == nil {
			result = Failure(http.StatusNotFound, "Tweet not found")
			return nil
		}
		authorID = tweet.UserID

		edge, err := s.likes.GetLike(ctx, in.UserID, in.TweetID)
		if err != nil {
			return err
		}
		if edge == nil {
			like := &models.Like{UserID: in.UserID, TweetID: in.TweetID}
			if err := s.likes.CreateLike(ctx, like); err != nil {
				return err
			}
			result = Success(http.StatusCreated, "Tweet liked successfully", like)
			return nil
		}

		if _, err := s.likes.DeleteLike(ctx, edge.ID); err != nil {
			return err
		}
		result = Success(http.StatusOK, "Like removed successfully", nil)
		return nil
	})
	if errors.Is(err, repositories.ErrDuplicateEdge) {
		return Failure(http.StatusConflict, "Like already exists")
	}
	if err != nil {
		s.logger.Error("like toggle failed", zap.String("user_id", in.UserID), zap.String("tweet_id", in.TweetID), zap.Error(err))
		return InternalError(err)
	}
	if result.OK {
		created := result.Code == http.StatusCreated
		metrics.Toggled("like", created)
		if created {
			tweetID := in.TweetID
			s.notify.Notify(ctx, &models.Notification{Type: models.NotificationLike, ActorID: in.UserID, RecipientID: authorID, TweetID: &tweetID})
		}
	}
	return result
}

// Create posts a tweet, reply or retweet. Replies and retweets need an existing parent.
func (s *TweetService) Create(ctx context.Context, in CreateTweetInput) Result {
	author, err := s.users.GetUserByID(ctx, in.UserID)
	if err != nil {
		s.logger.Error("get user failed", zap.String("user_id", in.UserID), zap.Error(err))
		return InternalError(err)
	}
	if author == nil {
		return Failure(http.StatusNotFound, "User not found")
	}

	if in.ParentID != nil {
		parent, err := s.tweets.GetTweetByID(ctx, *in.ParentID)
		if err != nil {
			s.logger.Error("get parent tweet failed", zap.String("parent_id", *in.ParentID), zap.Error(err))
			return InternalError(err)
		}
		if parent == nil {
			return Failure(http.StatusNotFound, "Parent tweet not found")
		}
	}

	content := in.Content
	if content != nil && *content == "" {
		content = nil
	}
	tweet := &models.Tweet{UserID: in.UserID, Type: in.Type, ParentID: in.ParentID, Content: content}
	if err := s.tweets.CreateTweet(ctx, tweet); err != nil {
		s.logger.Error("create tweet failed", zap.String("user_id", in.UserID), zap.Error(err))
		return InternalError(err)
	}

	metrics.TweetsPosted.WithLabelValues(string(tweet.Type)).Inc()
	return Success(http.StatusCreated, "Tweet created successfully", tweet)
}

// FindAll returns the caller's timeline: their own tweets and those of the
// users they follow, newest first.
func (s *TweetService) FindAll(ctx context.Context, userID string, page models.Pagination) Result {
	take := page.Take
	if take <= 0 {
		take = defaultTake
	}
	if take > maxTake {
		take = maxTake
	}
	pageNo := page.Page
	if pageNo <= 0 {
		pageNo = 1
	}

	following, err := s.follows.GetFollowingIDs(ctx, userID)
	if err != nil {
		s.logger.Error("get following failed", zap.String("user_id", userID), zap.Error(err))
		return InternalError(err)
	}
	authorIDs := append([]string{userID}, following...)

	tweets, err := s.tweets.GetTimeline(ctx, authorIDs, page.Search, (pageNo-1)*take, take)
	if err != nil {
		s.logger.Error("get timeline failed", zap.String("user_id", userID), zap.Error(err))
		return InternalError(err)
	}

	views, err := s.enrich(ctx, userID, tweets)
	if err != nil {
		s.logger.Error("enrich timeline failed", zap.String("user_id", userID), zap.Error(err))
		return InternalError(err)
	}
	return Success(http.StatusOK, "Tweets fetched successfully", views)
}

// FindOne returns a tweet with its author, counters and replies.
func (s *TweetService) FindOne(ctx context.Context, id, viewerID string) Result {
	tweet, err := s.tweets.GetTweetByID(ctx, id)
	if err != nil {
		s.logger.Error("get tweet failed", zap.String("tweet_id", id), zap.Error(err))
		return InternalError(err)
	}
	if tweet == nil {
		return Failure(http.StatusNotFound, "Tweet not found")
	}

	views, err := s.enrich(ctx, viewerID, []models.Tweet{*tweet})
	if err != nil {
		s.logger.Error("enrich tweet failed", zap.String("tweet_id", id), zap.Error(err))
		return InternalError(err)
	}
	replies, err := s.tweets.GetReplies(ctx, id)
	if err != nil {
		s.logger.Error("get replies failed", zap.String("tweet_id", id), zap.Error(err))
		return InternalError(err)
	}
	view := views[0]
	view.Replies = replies
	return Success(http.StatusOK, "Tweet fetched successfully", view)
}

// Update rewrites the content of the caller's own tweet.
func (s *TweetService) Update(ctx context.Context, in UpdateTweetInput) Result {
	tweet, err := s.tweets.GetTweetByID(ctx, in.ID)
	if err != nil {
		s.logger.Error("get tweet failed", zap.String("tweet_id", in.ID), zap.Error(err))
		return InternalError(err)
	}
	if tweet == nil {
		return Failure(http.StatusNotFound, "Tweet not found")
	}
	if tweet.UserID != in.ActorID {
		return Failure(http.StatusForbidden, "You can only update your own tweets")
	}

	content := in.Content
	tweet.Content = &content
	if err := s.tweets.UpdateTweet(ctx, tweet); err != nil {
		s.logger.Error("update tweet failed", zap.String("tweet_id", in.ID), zap.Error(err))
		return InternalError(err)
	}
	return Success(http.StatusOK, "Tweet updated successfully", tweet)
}

// Remove deletes the caller's own tweet; its likes and replies cascade.
func (s *TweetService) Remove(ctx context.Context, id, actorID string) Result {
	tweet, err := s.tweets.GetTweetByID(ctx, id)
	if err != nil {
		s.logger.Error("get tweet failed", zap.String("tweet_id", id), zap.Error(err))
		return InternalError(err)
	}
	if tweet == nil {
		return Failure(http.StatusNotFound, "Tweet not found")
	}
	if tweet.UserID != actorID {
		return Failure(http.StatusForbidden, "You can only remove your own tweets")
	}

	if err := s.tweets.DeleteTweet(ctx, id); err != nil {
		s.logger.Error("delete tweet failed", zap.String("tweet_id", id), zap.Error(err))
		return InternalError(err)
	}
	return Success(http.StatusOK, "Tweet removed successfully", nil)
}

func (s *TweetService) enrich(ctx context.Context, viewerID string, tweets []models.Tweet) ([]models.TweetView, error) {
	views := make([]models.TweetView, 0, len(tweets))
	if len(tweets) == 0 {
		return views, nil
	}

	ids := make([]string, 0, len(tweets))
	authorIDs := make([]string, 0, len(tweets))
	seen := make(map[string]bool, len(tweets))
	for _, t := range tweets {
		ids = append(ids, t.ID)
		if !seen[t.UserID] {
			seen[t.UserID] = true
			authorIDs = append(authorIDs, t.UserID)
		}
	}

	authors, err := s.users.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.UserBase, len(authors))
	for i := range authors {
		byID[authors[i].ID] = authors[i].ToBase()
	}
	likeCounts, err := s.likes.CountByTweetIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	replyCounts, err := s.tweets.CountReplies(ctx, ids)
	if err != nil {
		return nil, err
	}
	liked, err := s.likes.LikedTweetIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	for _, t := range tweets {
		views = append(views, models.TweetView{
			Tweet:        t,
			Author:       byID[t.UserID],
			LikesCount:   likeCounts[t.ID],
			RepliesCount: replyCounts[t.ID],
			Liked:        liked[t.ID],
		})
	}
	return views, nil
}
