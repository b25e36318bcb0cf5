// Package export 把预处理结果写为 JSON 文件，供外部训练代码读取。
package export

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/seqkit/dataset"
	"github.com/rushteam/seqkit/pkg/logging"
	"github.com/rushteam/seqkit/sequence"
)

// 输出文件名
const (
	MatrixFile     = "matrix.json"
	TestMatrixFile = "test_matrix.json"
	TrainFile      = "train.json"
	TestFile       = "test.json"
	UsersFile      = "users.json"
	ItemsFile      = "items.json"
)

// Artifacts 是一次预处理的全部产出，nil 字段不写出。
type Artifacts struct {
	Matrix *dataset.CSRMatrix
	// TestMatrix 是留出测试集的交互矩阵，列编码与 Matrix 共用同一物品词表
	TestMatrix *dataset.CSRMatrix
	Train      *sequence.Container
	Test       *sequence.Container
	Users      *dataset.Registry
	Items      *dataset.Registry
}

// Matrix 是 CSR 矩阵的 JSON 形态。
type Matrix struct {
	Shape   [2]int    `json:"shape"`
	IndPtr  []int     `json:"indptr"`
	Indices []int     `json:"indices"`
	Data    []float64 `json:"data"`
}

// Sequences 是 Container 的 JSON 形态；测试集没有 targets 与 T。
type Sequences struct {
	L         int     `json:"L"`
	T         int     `json:"T,omitempty"`
	UserIDs   []int   `json:"user_ids"`
	Sequences [][]int `json:"sequences"`
	Targets   [][]int `json:"targets,omitempty"`
}

// Vocabulary 是词表的 JSON 形态，Shifted 表示 0 已保留为填充位。
type Vocabulary struct {
	Shifted bool           `json:"shifted"`
	Codes   map[string]int `json:"codes"`
}

// Writer 把 Artifacts 写到 Dir 目录。
type Writer struct {
	Dir string
}

// WriteAll 并发写出所有非 nil 的产物，返回写出的文件路径。
// 任一文件失败时取消其余写入并返回第一个错误。
func (w *Writer) WriteAll(ctx context.Context, a Artifacts) ([]string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	jobs := map[string]any{}
	if a.Matrix != nil {
		jobs[MatrixFile] = toMatrix(a.Matrix)
	}
	if a.TestMatrix != nil {
		jobs[TestMatrixFile] = toMatrix(a.TestMatrix)
	}
	if a.Train != nil {
		jobs[TrainFile] = toSequences(a.Train)
	}
	if a.Test != nil {
		jobs[TestFile] = toSequences(a.Test)
	}
	if a.Users != nil {
		jobs[UsersFile] = toVocabulary(a.Users)
	}
	if a.Items != nil {
		jobs[ItemsFile] = toVocabulary(a.Items)
	}

	eg, gctx := errgroup.WithContext(ctx)
	paths := make([]string, 0, len(jobs))
	for name, v := range jobs {
		v := v
		path := filepath.Join(w.Dir, name)
		paths = append(paths, path)
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return writeJSON(path, v)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	logging.Info().Str("dir", w.Dir).Strs("files", paths).Msg("artifacts written")
	return paths, nil
}

func writeJSON(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := json.NewEncoder(bw).Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return bw.Flush()
}

func toMatrix(m *dataset.CSRMatrix) Matrix {
	return Matrix{
		Shape:   [2]int{m.NumRows, m.NumCols},
		IndPtr:  m.IndPtr,
		Indices: m.Indices,
		Data:    m.Data,
	}
}

func toSequences(c *sequence.Container) Sequences {
	return Sequences{
		L:         c.L,
		T:         c.T,
		UserIDs:   c.UserIDs,
		Sequences: c.Sequences,
		Targets:   c.Targets,
	}
}

func toVocabulary(r *dataset.Registry) Vocabulary {
	return Vocabulary{Shifted: r.Shifted(), Codes: r.Map()}
}
