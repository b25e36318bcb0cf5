package dataset

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// COOMatrix 是坐标格式的稀疏矩阵。重复坐标保留为多条记录，转换时累加。
type COOMatrix struct {
	Rows    []int
	Cols    []int
	Data    []float64
	NumRows int
	NumCols int
}

// CSRMatrix 是压缩行格式的稀疏矩阵。重复坐标已累加，每行内列下标升序。
type CSRMatrix struct {
	IndPtr  []int // 长度 NumRows+1，第 r 行的非零元位于 [IndPtr[r], IndPtr[r+1])
	Indices []int
	Data    []float64
	NumRows int
	NumCols int
}

// NNZ 返回存储的非零元个数。
func (m *COOMatrix) NNZ() int { return len(m.Data) }

// NNZ 返回存储的非零元个数。
func (m *CSRMatrix) NNZ() int { return len(m.Data) }

// ToCOO 返回 NumUsers × NumItems 的坐标矩阵，每条交互对应一个 1.0。
func (t *Interactions) ToCOO() *COOMatrix {
	n := t.Len()
	m := &COOMatrix{
		Rows:    make([]int, n),
		Cols:    make([]int, n),
		Data:    make([]float64, n),
		NumRows: t.NumUsers,
		NumCols: t.NumItems,
	}
	copy(m.Rows, t.UserIDs)
	copy(m.Cols, t.ItemIDs)
	for i := range m.Data {
		m.Data[i] = 1.0
	}
	return m
}

// ToCSR 返回压缩行矩阵，重复交互累加为计数。
func (t *Interactions) ToCSR() *CSRMatrix {
	return t.ToCOO().ToCSR()
}

// ToDense 返回交互计数的稠密矩阵；空表（任一维为 0）返回 nil。
func (t *Interactions) ToDense() *mat.Dense {
	return t.ToCOO().ToDense()
}

// ToCSR 把坐标矩阵转为压缩行矩阵，重复坐标累加。
func (m *COOMatrix) ToCSR() *CSRMatrix {
	out := &CSRMatrix{
		IndPtr:  make([]int, m.NumRows+1),
		NumRows: m.NumRows,
		NumCols: m.NumCols,
	}

	// 按行计数后做前缀和，得到每行的写入位置
	for _, r := range m.Rows {
		out.IndPtr[r+1]++
	}
	for r := 0; r < m.NumRows; r++ {
		out.IndPtr[r+1] += out.IndPtr[r]
	}
	cols := make([]int, len(m.Rows))
	vals := make([]float64, len(m.Rows))
	next := make([]int, m.NumRows)
	copy(next, out.IndPtr[:m.NumRows])
	for i, r := range m.Rows {
		cols[next[r]] = m.Cols[i]
		vals[next[r]] = m.Data[i]
		next[r]++
	}

	// 行内按列排序并合并重复坐标
	out.Indices = make([]int, 0, len(cols))
	out.Data = make([]float64, 0, len(vals))
	start := 0
	for r := 0; r < m.NumRows; r++ {
		lo, hi := out.IndPtr[r], out.IndPtr[r+1]
		row := rowEntries{cols: cols[lo:hi], vals: vals[lo:hi]}
		sort.Stable(row)
		for k := range row.cols {
			last := len(out.Indices) - 1
			if last >= start && out.Indices[last] == row.cols[k] {
				out.Data[last] += row.vals[k]
				continue
			}
			out.Indices = append(out.Indices, row.cols[k])
			out.Data = append(out.Data, row.vals[k])
		}
		out.IndPtr[r] = start
		start = len(out.Indices)
	}
	out.IndPtr[m.NumRows] = start
	return out
}

// ToDense 把坐标矩阵累加为稠密矩阵；任一维为 0 时返回 nil（gonum 不支持空矩阵）。
func (m *COOMatrix) ToDense() *mat.Dense {
	if m.NumRows == 0 || m.NumCols == 0 {
		return nil
	}
	d := mat.NewDense(m.NumRows, m.NumCols, nil)
	for i := range m.Rows {
		r, c := m.Rows[i], m.Cols[i]
		d.Set(r, c, d.At(r, c)+m.Data[i])
	}
	return d
}

// Row 返回第 r 行的列下标与取值（共享底层数组，调用方不应修改）。
func (m *CSRMatrix) Row(r int) ([]int, []float64) {
	lo, hi := m.IndPtr[r], m.IndPtr[r+1]
	return m.Indices[lo:hi], m.Data[lo:hi]
}

type rowEntries struct {
	cols []int
	vals []float64
}

func (r rowEntries) Len() int           { return len(r.cols) }
func (r rowEntries) Less(i, j int) bool { return r.cols[i] < r.cols[j] }
func (r rowEntries) Swap(i, j int) {
	r.cols[i], r.cols[j] = r.cols[j], r.cols[i]
	r.vals[i], r.vals[j] = r.vals[j], r.vals[i]
}
