// Package vectorindex реализует плоский (brute-force) индекс по скалярному произведению.
// Векторы нормализуются перед вставкой, поэтому скалярное произведение равно косинусной близости.
package vectorindex

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/DRSN-tech/product-intelligence/pkg/e"
)

var magic = [4]byte{'P', 'I', 'E', 'X'}

// Hit — результат поиска: позиция во внутреннем хранилище, id продукта и score.
type Hit struct {
	Position int
	ID       int64
	Score    float64
}

// Flat хранит векторы подряд в одном срезе; позиция i соответствует ids[i].
// Индекс заполняется только во время сборки, после публикации он не изменяется.
type Flat struct {
	dim  int
	ids  []int64
	data []float32
}

func NewFlat(dim int) *Flat {
	return &Flat{dim: dim}
}

// Dim возвращает размерность индекса.
func (f *Flat) Dim() int { return f.dim }

// Len возвращает количество векторов.
func (f *Flat) Len() int { return len(f.ids) }

// IDs возвращает копию массива соответствия позиция → id.
func (f *Flat) IDs() []int64 {
	return slices.Clone(f.ids)
}

// Vector возвращает вектор, хранящийся на позиции pos.
func (f *Flat) Vector(pos int) []float32 {
	return f.data[pos*f.dim : (pos+1)*f.dim]
}

// Add добавляет вектор в конец индекса. Вектор копируется.
func (f *Flat) Add(id int64, vec []float32) error {
	if len(vec) != f.dim {
		return fmt.Errorf("%w: got %d, want %d", e.ErrIndexDimension, len(vec), f.dim)
	}

	f.ids = append(f.ids, id)
	f.data = append(f.data, vec...)
	return nil
}

// Search возвращает не более k ближайших векторов по убыванию скалярного произведения.
// При равенстве score раньше идёт меньшая позиция (порядок вставки).
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", e.ErrIndexDimension, len(query), f.dim)
	}
	if k <= 0 || len(f.ids) == 0 {
		return nil, nil
	}

	hits := make([]Hit, len(f.ids))
	for pos := range f.ids {
		hits[pos] = Hit{Position: pos, ID: f.ids[pos], Score: dot(f.Vector(pos), query)}
	}

	slices.SortStableFunc(hits, func(a, b Hit) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if k < len(hits) {
		hits = hits[:k]
	}

	return hits, nil
}

// MarshalBinary сериализует индекс: magic, размерность, количество, ids, векторы (little-endian).
func (f *Flat) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(4 + 4 + 8 + len(f.ids)*8 + len(f.data)*4)

	buf.Write(magic[:])
	if err := binary.Write(&buf, binary.LittleEndian, uint32(f.dim)); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint64(len(f.ids))); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, f.ids); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, f.data); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary восстанавливает индекс, сохранённый MarshalBinary.
func (f *Flat) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)

	var m [4]byte
	if _, err := r.Read(m[:]); err != nil || m != magic {
		return e.ErrArtifactCorrupt
	}

	var (
		dim uint32
		n   uint64
	)
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return e.ErrArtifactCorrupt
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return e.ErrArtifactCorrupt
	}

	want := n*8 + n*uint64(dim)*4
	if uint64(r.Len()) != want {
		return e.ErrArtifactCorrupt
	}

	ids := make([]int64, n)
	vectors := make([]float32, n*uint64(dim))
	if err := binary.Read(r, binary.LittleEndian, ids); err != nil {
		return e.ErrArtifactCorrupt
	}
	if err := binary.Read(r, binary.LittleEndian, vectors); err != nil {
		return e.ErrArtifactCorrupt
	}

	f.dim = int(dim)
	f.ids = ids
	f.data = vectors
	return nil
}

// Normalize возвращает L2-нормализованную копию вектора. Нулевой вектор остаётся нулевым.
func Normalize(vec []float32) []float32 {
	out := make([]float32, len(vec))

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return out
	}

	norm := math.Sqrt(sum)
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}

	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// EncodeVector упаковывает вектор в little-endian float32.
func EncodeVector(vec []float32) []byte {
	out := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// DecodeVector распаковывает вектор, упакованный EncodeVector.
func DecodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, e.ErrArtifactCorrupt
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out, nil
}
