package service

import (
	"context"

	bookrepo "library-backend/internal/domains/book/repository"
	"library-backend/internal/domains/dashboard/model"
	"library-backend/internal/domains/dashboard/repository"
	"library-backend/pkg/clock"
)

const (
	mostBorrowedLimit   = 10
	recentActivityLimit = 20
)

type ServiceInterface interface {
	GetStats(ctx context.Context) (*model.DashboardStats, error)
}

type dashboardService struct {
	repo  repository.RepositoryInterface
	books bookrepo.RepositoryInterface
	clock clock.Clock
}

func NewService(repo repository.RepositoryInterface, books bookrepo.RepositoryInterface, clk clock.Clock) ServiceInterface {
	return &dashboardService{repo: repo, books: books, clock: clk}
}

// GetStats assembles the admin overview. The counts come from separate
// queries and are not a single snapshot; close enough for a dashboard.
func (s *dashboardService) GetStats(ctx context.Context) (*model.DashboardStats, error) {
	now := s.clock.Now()

	bookStats, err := s.repo.BookStats(ctx)
	if err != nil {
		return nil, err
	}

	memberStats, err := s.repo.MemberStats(ctx)
	if err != nil {
		return nil, err
	}

	loanStats, err := s.repo.LoanStats(ctx, now)
	if err != nil {
		return nil, err
	}

	fineStats, err := s.repo.FineStats(ctx)
	if err != nil {
		return nil, err
	}

	mostBorrowed, err := s.books.PopularBooks(ctx, mostBorrowedLimit)
	if err != nil {
		return nil, err
	}

	recent, err := s.repo.RecentActivity(ctx, recentActivityLimit)
	if err != nil {
		return nil, err
	}

	return &model.DashboardStats{
		Books:        bookStats,
		Members:      memberStats,
		Loans:        loanStats,
		Fines:        fineStats,
		MostBorrowed: mostBorrowed,
		Recent:       recent,
		GeneratedAt:  now,
	}, nil
}
