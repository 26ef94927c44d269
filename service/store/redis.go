package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"coalhub/model"

	"github.com/go-redis/redis/v9"
	"github.com/pkg/errors"
)

// Redis stores each record as a JSON value and keeps the set of ids.
type Redis struct {
	client *redis.Client
	prefix string
}

var _ Store = (*Redis)(nil)

// NewRedis creates a store on client with keys under prefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) recordKey(id uint64) string {
	return fmt.Sprintf("%s:record:%d", r.prefix, id)
}

func (r *Redis) idsKey() string { return r.prefix + ":records" }

func (r *Redis) seqKey() string { return r.prefix + ":record:seq" }

func (r *Redis) Get(ctx context.Context, id uint64) (*model.TestingRecord, error) {
	data, err := r.client.Get(ctx, r.recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get testing record %d", id)
	}
	var rec model.TestingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrapf(err, "decode testing record %d", id)
	}
	return &rec, nil
}

func (r *Redis) Put(ctx context.Context, rec *model.TestingRecord) error {
	if rec.ID == 0 {
		id, err := r.client.Incr(ctx, r.seqKey()).Uint64()
		if err != nil {
			return errors.Wrap(err, "allocate testing record id")
		}
		rec.ID = id
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrapf(err, "encode testing record %d", rec.ID)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.recordKey(rec.ID), data, 0)
		pipe.SAdd(ctx, r.idsKey(), rec.ID)
		return nil
	})
	return errors.Wrapf(err, "save testing record %d", rec.ID)
}

func (r *Redis) Delete(ctx context.Context, id uint64) error {
	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, r.recordKey(id))
		pipe.SRem(ctx, r.idsKey(), id)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "delete testing record %d", id)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Redis) ListBy(ctx context.Context, filter Filter) ([]model.TestingRecord, error) {
	members, err := r.client.SMembers(ctx, r.idsKey()).Result()
	if err != nil {
		return nil, errors.Wrap(err, "list testing record ids")
	}
	if len(members) == 0 {
		return []model.TestingRecord{}, nil
	}

	keys := make([]string, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		keys = append(keys, r.recordKey(id))
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "load testing records")
	}

	out := make([]model.TestingRecord, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			// deleted between SMEMBERS and MGET
			continue
		}
		var rec model.TestingRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, errors.Wrap(err, "decode testing record")
		}
		if filter.Match(&rec) {
			out = append(out, rec)
		}
	}
	return filter.page(out), nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
