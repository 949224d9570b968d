package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/CheongSzesuen/eventsWeb/internal/domain"
	domainerrors "github.com/CheongSzesuen/eventsWeb/internal/errors"
)

// Key prefixes for submissions.
const (
	submissionPrefix          = "sub:"
	submissionIdxStatusPrefix = "sub:idx:status:"
)

func submissionKey(id string) []byte {
	return []byte(submissionPrefix + id)
}

func submissionStatusKey(status domain.SubmissionStatus, id string) []byte {
	return []byte(submissionIdxStatusPrefix + string(status) + ":" + id)
}

// CreateSubmission persists a new submission and its status index entry.
func (s *Store) CreateSubmission(_ context.Context, sub *domain.Submission) error {
	key := submissionKey(sub.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check submission exists: %w", err)
	}
	if exists {
		return fmt.Errorf("submission %s already exists", sub.ID)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(sub)
		if err != nil {
			return fmt.Errorf("marshal submission: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		// Status index for listing by review state
		return txn.Set(submissionStatusKey(sub.Status, sub.ID), []byte{})
	})
}

// GetSubmission retrieves a submission by ID.
func (s *Store) GetSubmission(_ context.Context, id string) (*domain.Submission, error) {
	var sub domain.Submission
	if err := s.get(submissionKey(id), &sub); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domainerrors.NotFoundf("submission %s not found", id)
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return &sub, nil
}

// UpdateSubmissionStatus moves a submission to a new review state,
// keeping the status index in sync.
func (s *Store) UpdateSubmissionStatus(ctx context.Context, id string, status domain.SubmissionStatus) (*domain.Submission, error) {
	sub, err := s.GetSubmission(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := sub.Status
	sub.Status = status
	sub.UpdatedAt = time.Now().UTC()

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(sub)
		if err != nil {
			return fmt.Errorf("marshal submission: %w", err)
		}

		if err := txn.Set(submissionKey(sub.ID), data); err != nil {
			return err
		}

		if oldStatus != status {
			if err := txn.Delete(submissionStatusKey(oldStatus, sub.ID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := txn.Set(submissionStatusKey(status, sub.ID), []byte{}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// ListSubmissions returns submissions filtered by status, newest keys last.
// Pass an empty status to list all submissions.
func (s *Store) ListSubmissions(_ context.Context, status domain.SubmissionStatus, params PaginationParams) (*PaginatedResult[*domain.Submission], error) {
	params.Validate()

	startKey, err := DecodeCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	result := &PaginatedResult[*domain.Submission]{
		Items: make([]*domain.Submission, 0, params.Limit),
	}

	if status != "" {
		err = s.listByStatus(status, startKey, params.Limit, result)
	} else {
		err = s.listAll(startKey, params.Limit, result)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) listByStatus(status domain.SubmissionStatus, startKey string, limit int, result *PaginatedResult[*domain.Submission]) error {
	indexPrefix := []byte(submissionIdxStatusPrefix + string(status) + ":")

	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // Key-only index
		opts.Prefix = indexPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		seekKey := indexPrefix
		if startKey != "" {
			seekKey = []byte(startKey)
		}

		var lastKey string
		for it.Seek(seekKey); it.ValidForPrefix(indexPrefix); it.Next() {
			key := string(it.Item().Key())
			if key == startKey {
				continue // cursor points at the last item of the previous page
			}
			if len(result.Items) >= limit {
				result.HasMore = true
				result.NextCursor = EncodeCursor(lastKey)
				return nil
			}

			id := strings.TrimPrefix(key, string(indexPrefix))
			sub, err := s.getSubmissionInTxn(txn, id)
			if err != nil {
				continue // index entry without a record, skip
			}
			result.Items = append(result.Items, sub)
			lastKey = key
		}
		return nil
	})
}

func (s *Store) listAll(startKey string, limit int, result *PaginatedResult[*domain.Submission]) error {
	prefix := []byte(submissionPrefix)
	idxPrefix := []byte(submissionIdxStatusPrefix)

	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		seekKey := prefix
		if startKey != "" {
			seekKey = []byte(startKey)
		}

		var lastKey string
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			if strings.HasPrefix(key, string(idxPrefix)) {
				continue // skip index entries sharing the prefix
			}
			if key == startKey {
				continue
			}
			if len(result.Items) >= limit {
				result.HasMore = true
				result.NextCursor = EncodeCursor(lastKey)
				return nil
			}

			var sub domain.Submission
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &sub)
			})
			if err != nil {
				continue
			}
			result.Items = append(result.Items, &sub)
			lastKey = key
		}
		return nil
	})
}

// CountSubmissions returns the number of submissions in a given status.
func (s *Store) CountSubmissions(_ context.Context, status domain.SubmissionStatus) (int, error) {
	indexPrefix := []byte(submissionIdxStatusPrefix + string(status) + ":")

	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = indexPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(indexPrefix); it.ValidForPrefix(indexPrefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) getSubmissionInTxn(txn *badger.Txn, id string) (*domain.Submission, error) {
	item, err := txn.Get(submissionKey(id))
	if err != nil {
		return nil, err
	}

	var sub domain.Submission
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &sub)
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
