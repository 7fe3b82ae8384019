// Package storage is the single access point to the locally persisted
// state the storefront shares between runs: session, theme and the
// checkout draft. Key names and their invariants are enforced here so
// they never leak as string literals into callers.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"storefront-client/internal/domain"
)

const (
	keySessionToken    = "session_token"
	keyUserPK          = "user_pk"
	keyTokenExpiration = "token_expiration"
	keyTheme           = "theme"
	keyDraftOrder      = "commande"
	keySelectedCarrier = "selectedLivreur"
	keyCartSnapshot    = "panier"
)

var bucketName = []byte("storefront")

// Store wraps a bbolt database file. Concurrent processes pointing at
// the same file serialize on the file lock; there is no cross-key
// transaction guarantee beyond what each method does itself.
type Store struct {
	db *bolt.DB
}

// Open creates or opens the store file, creating parent directories as
// needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init store bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Session returns the stored session. A half-present pair (token
// without client id or the reverse) violates the session invariant;
// it is cleared on sight and reported as absent.
func (s *Store) Session() (domain.Session, bool, error) {
	var (
		token  string
		idRaw  string
		expRaw string
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		token = string(b.Get([]byte(keySessionToken)))
		idRaw = string(b.Get([]byte(keyUserPK)))
		expRaw = string(b.Get([]byte(keyTokenExpiration)))
		return nil
	})
	if err != nil {
		return domain.Session{}, false, err
	}

	if token == "" && idRaw == "" {
		return domain.Session{}, false, nil
	}
	sess := domain.Session{Token: token}
	if idRaw != "" {
		if _, err := fmt.Sscanf(idRaw, "%d", &sess.ClientID); err != nil {
			sess.ClientID = 0
		}
	}
	if !sess.Complete() {
		if err := s.ClearSession(); err != nil {
			return domain.Session{}, false, err
		}
		return domain.Session{}, false, nil
	}
	if expRaw != "" {
		if t, err := time.Parse(time.RFC3339, expRaw); err == nil {
			sess.ExpiresAt = t
		}
	}
	return sess, true, nil
}

// SetSession persists token and client id in one transaction so the
// pair can never be observed half-written.
func (s *Store) SetSession(sess domain.Session) error {
	if !sess.Complete() {
		return fmt.Errorf("refusing to store incomplete session")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if err := b.Put([]byte(keySessionToken), []byte(sess.Token)); err != nil {
			return err
		}
		if err := b.Put([]byte(keyUserPK), []byte(fmt.Sprintf("%d", sess.ClientID))); err != nil {
			return err
		}
		if sess.ExpiresAt.IsZero() {
			return b.Delete([]byte(keyTokenExpiration))
		}
		return b.Put([]byte(keyTokenExpiration), []byte(sess.ExpiresAt.Format(time.RFC3339)))
	})
}

// ClearSession removes token, client id and expiry together.
func (s *Store) ClearSession() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		for _, k := range []string{keySessionToken, keyUserPK, keyTokenExpiration} {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Theme returns the persisted palette name, empty when unset.
func (s *Store) Theme() (string, error) {
	var name string
	err := s.db.View(func(tx *bolt.Tx) error {
		name = string(tx.Bucket(bucketName).Get([]byte(keyTheme)))
		return nil
	})
	return name, err
}

// SetTheme persists the selected palette name.
func (s *Store) SetTheme(name string) error {
	return s.putString(keyTheme, name)
}

// DraftOrder reads the checkout draft, reporting absence rather than
// erroring when no checkout is in progress.
func (s *Store) DraftOrder() (*domain.DraftOrder, bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(keyDraftOrder))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if len(raw) == 0 {
		return nil, false, nil
	}
	var d domain.DraftOrder
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, false, fmt.Errorf("decode draft order: %w", err)
	}
	return &d, true, nil
}

// SetDraftOrder persists the checkout draft.
func (s *Store) SetDraftOrder(d domain.DraftOrder) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft order: %w", err)
	}
	return s.putBytes(keyDraftOrder, raw)
}

// SetSelectedCarrier mirrors the chosen carrier under its own key, the
// way the delivery step records it alongside the draft.
func (s *Store) SetSelectedCarrier(c domain.Carrier) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode carrier: %w", err)
	}
	return s.putBytes(keySelectedCarrier, raw)
}

// SelectedCarrier reads the mirrored carrier selection.
func (s *Store) SelectedCarrier() (*domain.Carrier, bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(keySelectedCarrier))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || len(raw) == 0 {
		return nil, false, err
	}
	var c domain.Carrier
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, false, fmt.Errorf("decode carrier: %w", err)
	}
	return &c, true, nil
}

// SetCartSnapshot keeps the last fetched cart for offline display.
func (s *Store) SetCartSnapshot(c domain.Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	return s.putBytes(keyCartSnapshot, raw)
}

// CartSnapshot reads the last persisted cart, if any.
func (s *Store) CartSnapshot() (*domain.Cart, bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(keyCartSnapshot))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || len(raw) == 0 {
		return nil, false, err
	}
	var c domain.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, false, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return &c, true, nil
}

// ClearCheckout removes every checkout-related key in one transaction.
// Called only after the server confirms the order.
func (s *Store) ClearCheckout() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		for _, k := range []string{keyDraftOrder, keySelectedCarrier, keyCartSnapshot} {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) putString(key, value string) error {
	return s.putBytes(key, []byte(value))
}

func (s *Store) putBytes(key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	})
}
