// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/noesis/core"
)

// Record layout versions. The first byte of every stored record names the
// layout it was written with.
const (
	thoughtVersion    byte = 1
	connectionVersion byte = 1
)

// serializer is the method set shared by the mus-go primitive serializers.
type serializer[T any] interface {
	Size(v T) int
	Marshal(v T, bs []byte) int
	Unmarshal(bs []byte) (T, int, error)
}

// fieldWriter is driven once to size a record and once to write it.
type fieldWriter interface {
	putByte(v byte)
	putString(v string)
	putBool(v bool)
	putUint64(v uint64)
	putInt64(v int64)
	putFloat32(v float32)
	putFloat64(v float64)
}

type sizer struct{ n int }

func (s *sizer) putByte(byte) { s.n++ }
func (s *sizer) putString(v string) { s.n += ord.String.Size(v) }
func (s *sizer) putBool(v bool) { s.n += ord.Bool.Size(v) }
func (s *sizer) putUint64(v uint64) { s.n += varint.Uint64.Size(v) }
func (s *sizer) putInt64(v int64) { s.n += varint.Int64.Size(v) }
func (s *sizer) putFloat32(v float32) { s.n += raw.Float32.Size(v) }
func (s *sizer) putFloat64(v float64) { s.n += raw.Float64.Size(v) }

type encoder struct {
	bs []byte
	n  int
}

func (e *encoder) putByte(v byte) {
	e.bs[e.n] = v
	e.n++
}

func (e *encoder) putString(v string) { e.n += ord.String.Marshal(v, e.bs[e.n:]) }
func (e *encoder) putBool(v bool) { e.n += ord.Bool.Marshal(v, e.bs[e.n:]) }
func (e *encoder) putUint64(v uint64) { e.n += varint.Uint64.Marshal(v, e.bs[e.n:]) }
func (e *encoder) putInt64(v int64) { e.n += varint.Int64.Marshal(v, e.bs[e.n:]) }
func (e *encoder) putFloat32(v float32) { e.n += raw.Float32.Marshal(v, e.bs[e.n:]) }
func (e *encoder) putFloat64(v float64) { e.n += raw.Float64.Marshal(v, e.bs[e.n:]) }

// encode sizes the record, allocates once and writes it.
func encode(write func(fieldWriter)) []byte {
	var s sizer
	write(&s)
	e := encoder{bs: make([]byte, s.n)}
	write(&e)
	return e.bs
}

// decoder reads fields in order and keeps the first error.
type decoder struct {
	bs  []byte
	n   int
	err error
}

func read[T any](d *decoder, ser serializer[T]) T {
	var zero T
	if d.err != nil {
		return zero
	}
	v, n, err := ser.Unmarshal(d.bs[d.n:])
	if err != nil {
		d.err = fmt.Errorf("%w: %w", ErrTruncatedData, err)
		return zero
	}
	d.n += n
	return v
}

func (d *decoder) getByte() byte {
	if d.err != nil {
		return 0
	}
	if d.n >= len(d.bs) {
		d.err = ErrTruncatedData
		return 0
	}
	v := d.bs[d.n]
	d.n++
	return v
}

func (d *decoder) getString() string { return read(d, ord.String) }
func (d *decoder) getBool() bool { return read(d, ord.Bool) }
func (d *decoder) getUint64() uint64 { return read(d, varint.Uint64) }
func (d *decoder) getInt64() int64 { return read(d, varint.Int64) }
func (d *decoder) getFloat32() float32 { return read(d, raw.Float32) }
func (d *decoder) getFloat64() float64 { return read(d, raw.Float64) }

func (d *decoder) getTime() time.Time {
	return time.UnixMicro(d.getInt64()).UTC()
}

func (d *decoder) getStrings() []string {
	count := d.getUint64()
	if d.err != nil || count == 0 {
		return nil
	}
	if count > uint64(len(d.bs)-d.n) {
		d.err = ErrTruncatedData
		return nil
	}
	out := make([]string, count)
	for i := range out {
		out[i] = d.getString()
	}
	return out
}

// StoredTime returns t as it reads back after a round trip through the
// codec: UTC at microsecond precision.
func StoredTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func writeTime(w fieldWriter, t time.Time) {
	w.putInt64(t.UnixMicro())
}

func writeStrings(w fieldWriter, ss []string) {
	w.putUint64(uint64(len(ss)))
	for _, s := range ss {
		w.putString(s)
	}
}

func writeVector(w fieldWriter, v []float32) {
	w.putUint64(uint64(len(v)))
	for _, f := range v {
		w.putFloat32(f)
	}
}

func (d *decoder) getVector() []float32 {
	count := d.getUint64()
	if d.err != nil || count == 0 {
		return nil
	}
	if count > uint64(len(d.bs)-d.n)/4 {
		d.err = ErrTruncatedData
		return nil
	}
	out := make([]float32, count)
	for i := range out {
		out[i] = d.getFloat32()
	}
	return out
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return core.ID(id), nil
}

// MarshalVector serializes an embedding to bytes.
func MarshalVector(v []float32) []byte {
	return encode(func(w fieldWriter) { writeVector(w, v) })
}

// UnmarshalVector deserializes an embedding from bytes.
func UnmarshalVector(data []byte) ([]float32, error) {
	d := &decoder{bs: data}
	v := d.getVector()
	if d.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, d.err)
	}
	return v, nil
}

// MarshalThought serializes a Thought to bytes.
func MarshalThought(t *core.Thought) []byte {
	return encode(func(w fieldWriter) {
		w.putByte(thoughtVersion)
		w.putUint64(uint64(t.ID))
		w.putString(t.UserID)
		w.putString(t.RawTranscript)
		w.putString(t.CleanedText)
		w.putString(t.Summary)
		w.putString(string(t.Type))
		w.putInt64(int64(t.Priority))
		writeStrings(w, t.Categories)
		w.putBool(t.Sentiment != nil)
		if t.Sentiment != nil {
			w.putFloat64(*t.Sentiment)
		}
		writeStrings(w, t.Entities.People)
		writeStrings(w, t.Entities.Places)
		writeStrings(w, t.Entities.Projects)
		writeStrings(w, t.ActionItems)
		w.putBool(t.Deadline != nil)
		if t.Deadline != nil {
			writeTime(w, *t.Deadline)
		}
		w.putString(string(t.Status))
		writeVector(w, t.Embedding)
		w.putString(t.Language)
		w.putString(t.Source)
		writeTime(w, t.CreatedAt)
		writeTime(w, t.UpdatedAt)
	})
}

// UnmarshalThought deserializes a Thought from bytes.
func UnmarshalThought(data []byte) (*core.Thought, error) {
	d := &decoder{bs: data}
	if v := d.getByte(); d.err == nil && v != thoughtVersion {
		return nil, fmt.Errorf("%w: thought v%d", ErrUnsupportedVersion, v)
	}

	t := &core.Thought{}
	t.ID = core.ID(d.getUint64())
	t.UserID = d.getString()
	t.RawTranscript = d.getString()
	t.CleanedText = d.getString()
	t.Summary = d.getString()
	t.Type = core.ThoughtType(d.getString())
	t.Priority = int(d.getInt64())
	t.Categories = d.getStrings()
	if d.getBool() {
		s := d.getFloat64()
		t.Sentiment = &s
	}
	t.Entities.People = d.getStrings()
	t.Entities.Places = d.getStrings()
	t.Entities.Projects = d.getStrings()
	t.ActionItems = d.getStrings()
	if d.getBool() {
		dl := d.getTime()
		t.Deadline = &dl
	}
	t.Status = core.Status(d.getString())
	t.Embedding = d.getVector()
	t.Language = d.getString()
	t.Source = d.getString()
	t.CreatedAt = d.getTime()
	t.UpdatedAt = d.getTime()

	if d.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, d.err)
	}
	return t, nil
}

// MarshalConnection serializes a Connection to bytes.
func MarshalConnection(c *core.Connection) []byte {
	return encode(func(w fieldWriter) {
		w.putByte(connectionVersion)
		w.putUint64(uint64(c.ThoughtA))
		w.putUint64(uint64(c.ThoughtB))
		w.putString(c.UserID)
		w.putFloat64(c.Similarity)
		w.putString(string(c.Type))
		writeTime(w, c.CreatedAt)
		writeTime(w, c.UpdatedAt)
	})
}

// UnmarshalConnection deserializes a Connection from bytes.
func UnmarshalConnection(data []byte) (*core.Connection, error) {
	d := &decoder{bs: data}
	if v := d.getByte(); d.err == nil && v != connectionVersion {
		return nil, fmt.Errorf("%w: connection v%d", ErrUnsupportedVersion, v)
	}

	c := &core.Connection{
		ThoughtA:   core.ID(d.getUint64()),
		ThoughtB:   core.ID(d.getUint64()),
		UserID:     d.getString(),
		Similarity: d.getFloat64(),
		Type:       core.ConnectionType(d.getString()),
		CreatedAt:  d.getTime(),
		UpdatedAt:  d.getTime(),
	}
	if d.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, d.err)
	}
	return c, nil
}
