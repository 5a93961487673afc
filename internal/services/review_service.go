package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/poofware/rental-service/internal/constants"
	"github.com/poofware/rental-service/internal/dtos"
	"github.com/poofware/rental-service/internal/models"
	"github.com/poofware/rental-service/internal/repositories"
	"github.com/poofware/rental-service/internal/utils"
)

const msgDuplicateReview = "You have already reviewed this property."

type ReviewService interface {
	ListReviews(ctx context.Context, propertyID *uuid.UUID, q dtos.PageQuery) (*dtos.PageResponse[dtos.ReviewResponse], error)
	GetReview(ctx context.Context, id uuid.UUID) (*dtos.ReviewResponse, error)
	CreateReview(ctx context.Context, authorID uuid.UUID, req dtos.CreateReviewRequest) (*dtos.ReviewResponse, error)
	// UpdateReview with partial=false requires a rating (PUT).
	UpdateReview(ctx context.Context, authorID, id uuid.UUID, req dtos.UpdateReviewRequest, partial bool) (*dtos.ReviewResponse, error)
	DeleteReview(ctx context.Context, authorID, id uuid.UUID) error
}

type reviewService struct {
	reviewRepo   repositories.ReviewRepository
	propertyRepo repositories.PropertyRepository
}

func NewReviewService(reviewRepo repositories.ReviewRepository, propertyRepo repositories.PropertyRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, propertyRepo: propertyRepo}
}

func (s *reviewService) ListReviews(
	ctx context.Context,
	propertyID *uuid.UUID,
	q dtos.PageQuery,
) (*dtos.PageResponse[dtos.ReviewResponse], error) {
	list, total, err := s.reviewRepo.List(ctx, propertyID, q.PageSize, q.Offset())
	if err != nil {
		return nil, utils.NewInternalError("Could not list reviews", err)
	}
	return newPage(q, total, mapSlice(list, toReviewResponse)), nil
}

func (s *reviewService) GetReview(ctx context.Context, id uuid.UUID) (*dtos.ReviewResponse, error) {
	rv, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.NewInternalError("Could not load review", err)
	}
	if rv == nil {
		return nil, utils.NewNotFoundError("Review not found")
	}
	resp := toReviewResponse(rv)
	return &resp, nil
}

func (s *reviewService) CreateReview(
	ctx context.Context,
	authorID uuid.UUID,
	req dtos.CreateReviewRequest,
) (*dtos.ReviewResponse, error) {
	if req.Rating < models.MinRating || req.Rating > models.MaxRating {
		return nil, utils.NewValidationError("rating must be between 1 and 5.", nil)
	}
	prop, err := s.propertyRepo.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, utils.NewInternalError("Could not load property", err)
	}
	if !visibleTo(prop, &authorID) {
		return nil, utils.NewValidationError("Property does not exist.", utils.ErrNotFound)
	}

	exists, err := s.reviewRepo.Exists(ctx, req.PropertyID, authorID)
	if err != nil {
		return nil, utils.NewInternalError("Could not check existing reviews", err)
	}
	if exists {
		return nil, utils.NewConflictError(msgDuplicateReview, utils.ErrDuplicateReview)
	}

	rv := &models.Review{
		ID:         uuid.New(),
		PropertyID: req.PropertyID,
		AuthorID:   authorID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := s.reviewRepo.Create(ctx, rv); err != nil {
		// Two concurrent submissions both pass Exists; the unique index
		// catches the second.
		if errors.Is(err, utils.ErrDuplicateReview) {
			return nil, utils.NewConflictError(msgDuplicateReview, err)
		}
		if repositories.IsForeignKeyViolationOn(err, repositories.FKReviewAuthor) {
			return nil, utils.NewUnauthorizedError(constants.MsgUnknownCaller)
		}
		if repositories.IsForeignKeyViolation(err) {
			return nil, utils.NewValidationError("Property does not exist.", err)
		}
		return nil, utils.NewInternalError("Could not save review", err)
	}
	return s.GetReview(ctx, rv.ID)
}

func (s *reviewService) UpdateReview(
	ctx context.Context,
	authorID, id uuid.UUID,
	req dtos.UpdateReviewRequest,
	partial bool,
) (*dtos.ReviewResponse, error) {
	rv, err := s.ownReview(ctx, authorID, id)
	if err != nil {
		return nil, err
	}
	if !partial && req.Rating == nil {
		return nil, utils.NewValidationError("rating is required.", nil)
	}
	if req.Rating != nil {
		if *req.Rating < models.MinRating || *req.Rating > models.MaxRating {
			return nil, utils.NewValidationError("rating must be between 1 and 5.", nil)
		}
		rv.Rating = *req.Rating
	}
	if req.Comment != nil {
		rv.Comment = *req.Comment
	} else if !partial {
		rv.Comment = ""
	}

	if err := s.reviewRepo.Update(ctx, &rv.Review); err != nil {
		return nil, notFoundOr(err, "Review", "Could not update review")
	}
	resp := toReviewResponse(rv)
	return &resp, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, authorID, id uuid.UUID) error {
	if _, err := s.ownReview(ctx, authorID, id); err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Review", "Could not delete review")
	}
	return nil
}

func (s *reviewService) ownReview(ctx context.Context, authorID, id uuid.UUID) (*models.ReviewWithAuthor, error) {
	rv, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NewNotFoundError("Review not found")
		}
		return nil, utils.NewInternalError("Could not load review", err)
	}
	if rv == nil {
		return nil, utils.NewNotFoundError("Review not found")
	}
	if rv.AuthorID != authorID {
		return nil, utils.NewForbiddenError("You can only change your own reviews")
	}
	return rv, nil
}
