package mixin

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Report is a serializable snapshot of a registry's installation records.
type Report struct {
	Records []RecordInfo `cbor:"1,keyasint"`
}

// RecordInfo is the wire form of a Record.
type RecordInfo struct {
	ID          string   `cbor:"1,keyasint"`
	Class       string   `cbor:"2,keyasint"`
	Superclass  string   `cbor:"3,keyasint,omitempty"`
	Sequence    int      `cbor:"4,keyasint"`
	Names       []string `cbor:"5,keyasint,omitempty"`
	Bundles     []string `cbor:"6,keyasint,omitempty"`
	InstalledAt int64    `cbor:"7,keyasint"` // unix nanoseconds
}

// Time returns InstalledAt as a time.Time.
func (ri RecordInfo) Time() time.Time {
	return time.Unix(0, ri.InstalledAt)
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("mixin: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Report snapshots the registry's records in install order.
func (r *Registry) Report() *Report {
	recs := r.Records()
	rep := &Report{Records: make([]RecordInfo, len(recs))}
	for i, rec := range recs {
		rep.Records[i] = RecordInfo{
			ID:          rec.ID.String(),
			Class:       rec.Class,
			Superclass:  rec.Superclass,
			Sequence:    rec.Sequence,
			Names:       rec.Names,
			Bundles:     rec.Bundles,
			InstalledAt: rec.InstalledAt.UnixNano(),
		}
	}
	return rep
}

// MarshalReport serializes a Report to canonical CBOR bytes.
func MarshalReport(rep *Report) ([]byte, error) {
	return cborEncMode.Marshal(rep)
}

// UnmarshalReport deserializes a Report from CBOR bytes.
func UnmarshalReport(data []byte) (*Report, error) {
	var rep Report
	if err := cbor.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("mixin: unmarshal report: %w", err)
	}
	return &rep, nil
}
