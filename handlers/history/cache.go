package history

import (
	"context"
	"encoding/json"

	"msgvis/db"
)

const cachePrefix = "history:"

// resolveAction looks up a record from cache or DB.
// Returns (action, cacheHit, error)
func (hi *History) resolveAction(ctx context.Context, id string) (db.Action, bool, error) {
	if hi.Cache != nil {
		if v, ok := hi.Cache.Get(cachePrefix + id); ok {
			var a db.Action
			if err := json.Unmarshal([]byte(v), &a); err == nil {
				hi.countCache(true)
				return a, true, nil
			}
			hi.Cache.Delete(cachePrefix + id) // undecodable, evict
		}
		hi.countCache(false)
	}

	a, err := hi.Q.GetAction(ctx, id)
	if err != nil {
		return db.Action{}, false, err
	}

	if hi.Cache != nil {
		if b, err := json.Marshal(a); err == nil {
			hi.Cache.Set(cachePrefix+id, string(b))
		}
	}
	return a, false, nil
}

func (hi *History) countCache(hit bool) {
	if hi.Metrics != nil {
		hi.Metrics.RecordCache(hi.Cache.Backend(), hit)
	}
}
