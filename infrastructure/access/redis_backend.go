// RedisBackend is a reference implementation of C1 backed by Redis,
// demonstrating how get_access/add_usage (spec §6) map onto a real
// caching layer in front of whatever system of record issues access
// grants. go-redis (matst80-showoff's dependency in the retrieval
// pack) is used the same way that repo uses it: a single *redis.Client
// wrapped by a narrow domain-facing type.
package access

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	appaccess "sessioncore/application/access"
	sealing "sessioncore/infrastructure/config"

	domainaccess "sessioncore/domain/access"
)

// redisAccessTTL is the expiry Seed sets on both keys and AddUsage
// sets on the token key it rewrites. Once a token key has expired,
// GetAccess reports ErrNoAccess until the record is seeded again.
const redisAccessTTL = 5 * time.Minute

// RedisBackend is a reference C1 implementation. When sealKey is
// non-empty, Access.Secret is envelope-encrypted with
// sealing.SealSecret before it is written to Redis and decrypted with
// sealing.OpenSecret on read, so the admission key never sits in the
// cache in plain text (SPEC_FULL §11, golang.org/x/crypto wiring).
type RedisBackend struct {
	client  *redis.Client
	sealKey []byte
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

// NewRedisBackendWithSealKey is NewRedisBackend plus at-rest sealing
// of the stored Access.Secret.
func NewRedisBackendWithSealKey(client *redis.Client, sealKey []byte) *RedisBackend {
	return &RedisBackend{client: client, sealKey: sealKey}
}

func tokenKey(tokenID uuid.UUID) string {
	return fmt.Sprintf("access:token:%s", tokenID)
}

func accessIndexKey(accessID uuid.UUID) string {
	return fmt.Sprintf("access:index:%s", accessID)
}

// record is the JSON shape stored in Redis; domainaccess.Access's
// Secret is binary, so it is base64-encoded implicitly by
// encoding/json's []byte marshalling.
type record struct {
	AccessID       uuid.UUID `json:"access_id"`
	Secret         []byte    `json:"secret"`
	MaxClientCount uint32    `json:"max_client_count"`
	StatusCode     int       `json:"status_code"`
	Message        string    `json:"message"`
	BytesUp        uint64    `json:"bytes_up"`
	BytesDown      uint64    `json:"bytes_down"`
	ConnectedAt    int64     `json:"connected_at"`
}

func toRecord(a domainaccess.Access) record {
	return record{
		AccessID:       a.AccessID,
		Secret:         a.Secret,
		MaxClientCount: a.MaxClientCount,
		StatusCode:     int(a.StatusCode),
		Message:        a.Message,
		BytesUp:        a.Usage.BytesUp,
		BytesDown:      a.Usage.BytesDown,
		ConnectedAt:    a.Usage.ConnectedAt,
	}
}

func (r record) toAccess() domainaccess.Access {
	return domainaccess.Access{
		AccessID:       r.AccessID,
		Secret:         r.Secret,
		MaxClientCount: r.MaxClientCount,
		StatusCode:     domainaccess.StatusCode(r.StatusCode),
		Message:        r.Message,
		Usage: domainaccess.Usage{
			BytesUp:     r.BytesUp,
			BytesDown:   r.BytesDown,
			ConnectedAt: r.ConnectedAt,
		},
	}
}

// Seed writes the Access record under both lookup keys. Intended for
// provisioning flows outside the session core (the external token
// issuer referenced in spec §1).
func (b *RedisBackend) Seed(ctx context.Context, tokenID uuid.UUID, acc domainaccess.Access) error {
	sealed, sealErr := sealing.SealSecret(b.sealKey, acc.Secret)
	if sealErr != nil {
		return fmt.Errorf("redis backend: seal secret: %w", sealErr)
	}
	rec := toRecord(acc)
	rec.Secret = sealed

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis backend: marshal access: %w", err)
	}
	pipe := b.client.TxPipeline()
	pipe.Set(ctx, tokenKey(tokenID), payload, redisAccessTTL)
	pipe.Set(ctx, accessIndexKey(acc.AccessID), tokenID.String(), redisAccessTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (b *RedisBackend) GetAccess(ctx context.Context, identity domainaccess.ClientIdentity) (domainaccess.Access, error) {
	payload, err := b.client.Get(ctx, tokenKey(identity.TokenID)).Bytes()
	if err == redis.Nil {
		return domainaccess.Access{}, appaccess.ErrNoAccess
	}
	if err != nil {
		return domainaccess.Access{}, fmt.Errorf("redis backend: get: %w", err)
	}
	var rec record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return domainaccess.Access{}, fmt.Errorf("redis backend: unmarshal: %w", err)
	}
	secret, openErr := sealing.OpenSecret(b.sealKey, rec.Secret)
	if openErr != nil {
		return domainaccess.Access{}, fmt.Errorf("redis backend: open secret: %w", openErr)
	}
	rec.Secret = secret
	return rec.toAccess(), nil
}

func (b *RedisBackend) AddUsage(ctx context.Context, accessID uuid.UUID, deltaBytes uint64) (domainaccess.Access, error) {
	tokenIDStr, err := b.client.Get(ctx, accessIndexKey(accessID)).Result()
	if err == redis.Nil {
		return domainaccess.Access{}, appaccess.ErrNoAccess
	}
	if err != nil {
		return domainaccess.Access{}, fmt.Errorf("redis backend: index lookup: %w", err)
	}
	tokenID, parseErr := uuid.Parse(tokenIDStr)
	if parseErr != nil {
		return domainaccess.Access{}, fmt.Errorf("redis backend: bad index value: %w", parseErr)
	}

	key := tokenKey(tokenID)
	payload, getErr := b.client.Get(ctx, key).Bytes()
	if getErr != nil {
		return domainaccess.Access{}, fmt.Errorf("redis backend: get for update: %w", getErr)
	}
	var rec record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return domainaccess.Access{}, fmt.Errorf("redis backend: unmarshal for update: %w", err)
	}
	// Usage only ever increases (spec §6 "add_usage ... monotone").
	rec.BytesUp += deltaBytes

	updated, marshalErr := json.Marshal(rec)
	if marshalErr != nil {
		return domainaccess.Access{}, fmt.Errorf("redis backend: marshal for update: %w", marshalErr)
	}
	if err := b.client.Set(ctx, key, updated, redisAccessTTL).Err(); err != nil {
		return domainaccess.Access{}, fmt.Errorf("redis backend: set updated: %w", err)
	}
	secret, openErr := sealing.OpenSecret(b.sealKey, rec.Secret)
	if openErr != nil {
		return domainaccess.Access{}, fmt.Errorf("redis backend: open secret: %w", openErr)
	}
	rec.Secret = secret
	return rec.toAccess(), nil
}
