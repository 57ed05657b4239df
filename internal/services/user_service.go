package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/tweetline/backend/internal/cache"
	"github.com/anonto42/tweetline/backend/internal/metrics"
	"github.com/anonto42/tweetline/backend/internal/models"
	"github.com/anonto42/tweetline/backend/internal/repositories"
	"go.uber.org/zap"
)

// FollowInput toggles the edge UserID -> ID.
type FollowInput struct {
	ID     string
	UserID string
}

// UpdateUserInput carries a profile update. Nil fields are left untouched.
type UpdateUserInput struct {
	ID       string
	ActorID  string
	Name     *string
	Username *string
	Password *string
	Bio      *string
}

type UserService struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
	tweets  repositories.TweetRepository
	tx      repositories.Transactor
	counts  cache.CountCache
	notify  Notifier
	logger  *zap.Logger
}

func NewUserService(
	users repositories.UserRepository,
	follows repositories.FollowRepository,
	tweets repositories.TweetRepository,
	tx repositories.Transactor,
	counts cache.CountCache,
	notify Notifier,
	logger *zap.Logger,
) *UserService {
	if counts == nil {
		counts = cache.NoopCountCache{}
	}
	if notify == nil {
		notify = noopNotifier{}
	}
	return &UserService{users: users, follows: follows, tweets: tweets, tx: tx, counts: counts, notify: notify, logger: logger}
}

// Follow creates the follow edge when it is absent and removes it otherwise.
// Lookups and the write run in one transaction; a concurrent insert of the
// same edge surfaces as 409.
func (s *UserService) Follow(ctx context.Context, in FollowInput) Result {
	var result Result
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		follower, err := s.users.GetUserByID(ctx, in.UserID)
		if err != nil {
			return err
		}
		if follower == nil {
			result = Failure(http.StatusNotFound, "User not found")
			return nil
		}
		followed, err := s.users.GetUserByID(ctx, in.ID)
		if err != nil {
			return err
		}
		if followed == nil {
			result = Failure(http.StatusNotFound, "User not found")
			return nil
		}
		if in.UserID == in.ID {
			result = Failure(http.StatusConflict, "Follower ID and Followed ID can't be the same")
			return nil
		}

		edge, err := s.follows.GetFollow(ctx, in.UserID, in.ID)
		if err != nil {
			return err
		}
		if edge == nil {
			follow := &models.Follow{FollowerID: in.UserID, FollowedID: in.ID}
			if err := s.follows.CreateFollow(ctx, follow); err != nil {
				return err
			}
			result = Success(http.StatusCreated, "User followed successfully", follow)
			return nil
		}

		removed, err := s.follows.DeleteFollow(ctx, edge.ID)
		if err != nil {
			return err
		}
		if !removed {
			s.logger.Debug("follow edge already gone", zap.String("follow_id", edge.ID))
		}
		result = Success(http.StatusOK, "Follow removed successfully", nil)
		return nil
	})
	if errors.Is(err, repositories.ErrDuplicateEdge) {
		return Failure(http.StatusConflict, "Follow already exists")
	}
	if err != nil {
		s.logger.Error("follow toggle failed", zap.String("follower_id", in.UserID), zap.String("followed_id", in.ID), zap.Error(err))
		return InternalError(err)
	}

	if result.OK {
		created := result.Code == http.StatusCreated
		metrics.Toggled("follow", created)
		s.invalidate(ctx, in.UserID, in.ID)
		if created {
			s.notify.Notify(ctx, &models.Notification{Type: models.NotificationFollow, ActorID: in.UserID, RecipientID: in.ID})
		}
	}
	return result
}

// FindMany lists users matching filter with their follow counts.
func (s *UserService) FindMany(ctx context.Context, filter models.UserFilter) Result {
	users, err := s.users.FindUsers(ctx, filter)
	if err != nil {
		s.logger.Error("find users failed", zap.Error(err))
		return InternalError(err)
	}

	bases := make([]models.UserBase, 0, len(users))
	for i := range users {
		counts, err := s.countsFor(ctx, users[i].ID)
		if err != nil {
			s.logger.Error("count follows failed", zap.String("user_id", users[i].ID), zap.Error(err))
			return InternalError(err)
		}
		base := users[i].ToBase()
		base.Followers = &counts.Followers
		base.Following = &counts.Following
		bases = append(bases, base)
	}
	return Success(http.StatusOK, "Users fetched successfully", bases)
}

// FindOne returns the user with followers, following and tweets.
func (s *UserService) FindOne(ctx context.Context, id string) Result {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		s.logger.Error("get user failed", zap.String("user_id", id), zap.Error(err))
		return InternalError(err)
	}
	if user == nil {
		return Failure(http.StatusNotFound, "User not found")
	}

	followers, err := s.related(ctx, id, s.follows.GetFollowerIDs)
	if err != nil {
		return InternalError(err)
	}
	following, err := s.related(ctx, id, s.follows.GetFollowingIDs)
	if err != nil {
		return InternalError(err)
	}
	tweets, err := s.tweets.GetTweetsByUserID(ctx, id)
	if err != nil {
		s.logger.Error("get user tweets failed", zap.String("user_id", id), zap.Error(err))
		return InternalError(err)
	}
	if tweets == nil {
		tweets = []models.Tweet{}
	}

	return Success(http.StatusOK, "User fetched successfully", models.UserDetail{
		ID:        user.ID,
		Name:      user.Name,
		Username:  user.Username,
		Email:     user.Email,
		Bio:       user.Bio,
		Followers: followers,
		Following: following,
		Tweets:    tweets,
	})
}

// Update changes the caller's own profile.
func (s *UserService) Update(ctx context.Context, in UpdateUserInput) Result {
	user, err := s.users.GetUserByID(ctx, in.ID)
	if err != nil {
		s.logger.Error("get user failed", zap.String("user_id", in.ID), zap.Error(err))
		return InternalError(err)
	}
	if user == nil {
		return Failure(http.StatusNotFound, "User not found")
	}
	if user.ID != in.ActorID {
		return Failure(http.StatusForbidden, "You can only update your own profile")
	}

	if in.Username != nil && *in.Username != user.Username {
		taken, err := s.users.GetUserByUsername(ctx, *in.Username)
		if err != nil {
			return InternalError(err)
		}
		if taken != nil {
			return Failure(http.StatusConflict, "Username is already in use.")
		}
		user.Username = *in.Username
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Bio != nil {
		user.Bio = in.Bio
	}
	if in.Password != nil {
		hashed, err := hashPassword(*in.Password)
		if err != nil {
			s.logger.Error("hash password failed", zap.Error(err))
			return InternalError(err)
		}
		user.Password = hashed
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserConflict) {
			return Failure(http.StatusConflict, "Username is already in use.")
		}
		s.logger.Error("update user failed", zap.String("user_id", user.ID), zap.Error(err))
		return InternalError(err)
	}
	return Success(http.StatusOK, "User updated successfully", user.ToUpdated())
}

// Remove deletes the caller's own account together with its edges, likes and tweets.
func (s *UserService) Remove(ctx context.Context, id, actorID string) Result {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		s.logger.Error("get user failed", zap.String("user_id", id), zap.Error(err))
		return InternalError(err)
	}
	if user == nil {
		return Failure(http.StatusNotFound, "User not found")
	}
	if user.ID != actorID {
		return Failure(http.StatusForbidden, "You can only remove your own profile")
	}

	followerIDs, err := s.follows.GetFollowerIDs(ctx, id)
	if err != nil {
		return InternalError(err)
	}
	followingIDs, err := s.follows.GetFollowingIDs(ctx, id)
	if err != nil {
		return InternalError(err)
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		s.logger.Error("delete user failed", zap.String("user_id", id), zap.Error(err))
		return InternalError(err)
	}

	affected := append(append([]string{id}, followerIDs...), followingIDs...)
	s.invalidate(ctx, affected...)
	s.logger.Info("user removed", zap.String("user_id", id))
	return Success(http.StatusOK, "User removed successfully", nil)
}

func (s *UserService) related(ctx context.Context, id string, ids func(context.Context, string) ([]string, error)) ([]models.UserBase, error) {
	relatedIDs, err := ids(ctx, id)
	if err != nil {
		s.logger.Error("get related users failed", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	users, err := s.users.GetUsersByIDs(ctx, relatedIDs)
	if err != nil {
		s.logger.Error("get related users failed", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	bases := make([]models.UserBase, 0, len(users))
	for i := range users {
		bases = append(bases, users[i].ToBase())
	}
	return bases, nil
}

// countsFor reads follow counts through the cache. Cache errors are logged and
// fall back to the store.
func (s *UserService) countsFor(ctx context.Context, userID string) (cache.Counts, error) {
	counts, ok, err := s.counts.Get(ctx, userID)
	if err != nil {
		s.logger.Warn("count cache read failed", zap.String("user_id", userID), zap.Error(err))
	}
	if ok {
		return counts, nil
	}

	if counts.Followers, err = s.follows.CountFollowers(ctx, userID); err != nil {
		return cache.Counts{}, err
	}
	if counts.Following, err = s.follows.CountFollowing(ctx, userID); err != nil {
		return cache.Counts{}, err
	}
	if err := s.counts.Set(ctx, userID, counts); err != nil {
		s.logger.Warn("count cache write failed", zap.String("user_id", userID), zap.Error(err))
	}
	return counts, nil
}

func (s *UserService) invalidate(ctx context.Context, userIDs ...string) {
	if err := s.counts.Invalidate(ctx, userIDs...); err != nil {
		s.logger.Warn("count cache invalidation failed", zap.Strings("user_ids", userIDs), zap.Error(err))
	}
}
