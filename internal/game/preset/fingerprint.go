package preset

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"golang.org/x/crypto/blake2b"

	"github.com/udisondev/statcalc/internal/model"
)

// Fingerprint hashes everything an optimization result depends on: the base
// snapshot, the eligible pool (sorted by key), the monster type, the locked
// main, the target defense, the damage formula constants and stat rules, and
// the enumeration cap. Equal fingerprints mean a stored result can be reused.
func (o *Optimizer) Fingerprint(req Request) string {
	h, _ := blake2b.New256(nil) // only fails for oversized keys

	var buf [8]byte
	putUint := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	putFloat := func(v float64) {
		putUint(math.Float64bits(v))
	}

	for _, v := range req.Base {
		putFloat(v)
	}
	h.Write([]byte{byte(req.Monster)})
	if req.LockedMain != nil {
		h.Write([]byte{1, byte(req.LockedMain.Class), byte(req.LockedMain.Rarity)})
	} else {
		h.Write([]byte{0})
	}

	putFloat(o.model.TargetDefense(req.Monster))
	cfg := o.model.Config()
	putFloat(cfg.MainStatPerPercent)
	putFloat(cfg.BaseHitsPerSecond)
	for id := model.StatID(0); id < model.StatCount; id++ {
		r := o.agg.Rule(id)
		h.Write([]byte{byte(r.Kind)})
		putFloat(r.Max)
		putFloat(r.Denominator)
	}
	putUint(uint64(o.cfg.MaxCombinations))

	for _, c := range Eligible(req.Pool) {
		h.Write([]byte{byte(c.Key.Class), byte(c.Key.Rarity)})
		putUint(uint64(c.Level))
		for _, v := range c.Bundle.Equip {
			putFloat(v)
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}
