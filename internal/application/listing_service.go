package application

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/projboard/projboard/internal/domain/entity"
	repo "github.com/projboard/projboard/internal/domain/repository"
	"github.com/projboard/projboard/internal/listing"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrNotOwner        = errors.New("listing owned by another account")
)

// ListingService manages the shared project feed.
type ListingService struct {
	Listings        repo.ListingRepository
	Accounts        repo.AccountRepository
	Logger          *logrus.Logger
	ES              *elasticsearch.Client
	ESListingsIndex string
}

func NewListingService(listings repo.ListingRepository, accounts repo.AccountRepository, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *ListingService {
	return &ListingService{
		Listings:        listings,
		Accounts:        accounts,
		Logger:          logger,
		ES:              es,
		ESListingsIndex: esIndex,
	}
}

type CreateListingInput struct {
	Title       string
	Description string
	Price       string // pt-BR display string, e.g. "1.500,00"
	Phone       string
	PartySize   string // optional numeric string, default 1
}

// Create inserts a listing owned by ownerID. The numeric price is
// derived from the display string with the same parse the feed sorting
// uses, so both always agree.
func (s *ListingService) Create(ctx context.Context, ownerID string, in CreateListingInput) (*entity.Listing, error) {
	owner, err := s.Accounts.GetByID(ownerID)
	if err != nil || owner == nil {
		return nil, ErrAccountNotFound
	}

	partySize := 1
	if v := strings.TrimSpace(in.PartySize); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			partySize = n
		}
	}

	l := &entity.Listing{
		Title:        in.Title,
		Description:  in.Description,
		DisplayPrice: in.Price,
		Price:        listing.ParsePrice(in.Price),
		PartySize:    partySize,
		OwnerID:      owner.ID,
		OwnerName:    owner.Name,
		OwnerEmail:   owner.Email,
		OwnerPhone:   in.Phone,
		OwnerAvatar:  owner.AvatarURL,
	}
	if l.OwnerPhone == "" {
		l.OwnerPhone = owner.Phone
	}
	if err := s.Listings.Create(l); err != nil {
		return nil, err
	}
	s.index(ctx, l)
	return l, nil
}

// Feed returns the whole feed filtered and sorted in memory.
func (s *ListingService) Feed(ctx context.Context, search string, mode listing.SortMode) ([]entity.Listing, error) {
	items, err := s.Listings.List()
	if err != nil {
		return nil, err
	}
	return listing.Query(items, search, mode), nil
}

// Delete removes a listing when requesterID owns it. Ownership is
// matched on the stable account ID, never on display name.
func (s *ListingService) Delete(ctx context.Context, requesterID, listingID string) error {
	l, err := s.Listings.GetByID(listingID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrListingNotFound
		}
		return err
	}
	if l.OwnerID != requesterID {
		return ErrNotOwner
	}
	if err := s.Listings.Delete(listingID); err != nil {
		return err
	}
	s.deindex(ctx, listingID)
	return nil
}

func (s *ListingService) index(ctx context.Context, l *entity.Listing) {
	if s.ES == nil || s.ESListingsIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          l.ID,
		"title":       l.Title,
		"description": l.Description,
		"price":       l.Price,
		"owner_name":  l.OwnerName,
		"created_at":  l.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESListingsIndex, DocumentID: l.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("listing_id", l.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("listing_id", l.ID).Warn("es index response error")
	}
}

func (s *ListingService) deindex(ctx context.Context, id string) {
	if s.ES == nil || s.ESListingsIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESListingsIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("listing_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// Search performs a multi_match full-text search on title and
// description. Returns an empty result set when ES is not configured.
func (s *ListingService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESListingsIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESListingsIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
