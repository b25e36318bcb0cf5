package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rushteam/seqkit/dataset"
	"github.com/rushteam/seqkit/export"
	"github.com/rushteam/seqkit/pkg/dsl"
	"github.com/rushteam/seqkit/pkg/logging"
	"github.com/rushteam/seqkit/sequence"
	"github.com/rushteam/seqkit/store"
)

// 词表在存储中的名称
const (
	VocabUsers = "users"
	VocabItems = "items"
)

// LoadStage 读取训练集（以及可选的测试集），两者共享同一套 user/item 编码。
// 配置了 Vocab 时，先从存储恢复已有词表，再在其基础上增量扩展。
type LoadStage struct {
	TrainPath string
	TestPath  string
	Filter    *dsl.LineFilter
	Vocab     *store.Vocab
}

func (s *LoadStage) Name() string { return "load" }
func (s *LoadStage) Kind() Kind   { return KindLoad }

func (s *LoadStage) Process(ctx context.Context, st *State) error {
	if st.Users == nil {
		users, err := s.restore(ctx, VocabUsers)
		if err != nil {
			return err
		}
		st.Users = users
	}
	if st.Items == nil {
		items, err := s.restore(ctx, VocabItems)
		if err != nil {
			return err
		}
		st.Items = items
	}

	train, err := dataset.Load(ctx, s.TrainPath, st.Users, st.Items, dataset.WithFilter(s.Filter))
	if err != nil {
		return err
	}
	st.Train = train
	logLoaded(s.TrainPath, train)

	if s.TestPath == "" {
		return nil
	}
	test, err := dataset.Load(ctx, s.TestPath, st.Users, st.Items, dataset.WithFilter(s.Filter))
	if err != nil {
		return err
	}
	st.Test = test
	logLoaded(s.TestPath, test)
	return nil
}

// restore 从存储恢复词表；没有存储或词表不存在时返回空 Registry。
func (s *LoadStage) restore(ctx context.Context, name string) (*dataset.Registry, error) {
	if s.Vocab == nil {
		return dataset.NewRegistry(), nil
	}
	reg, err := s.Vocab.Load(ctx, name)
	if errors.Is(err, store.ErrVocabNotFound) {
		return dataset.NewRegistry(), nil
	}
	if err != nil {
		return nil, err
	}
	logging.Info().Str("vocab", name).Int("size", reg.Len()).Msg("vocabulary restored")
	return reg, nil
}

func logLoaded(path string, t *dataset.Interactions) {
	stats := t.Stats()
	logging.Info().
		Str("path", path).
		Int("interactions", t.Len()).
		Int("malformed", stats.Malformed).
		Int("filtered", stats.Filtered).
		Int("num_users", t.NumUsers).
		Int("num_items", t.NumItems).
		Msg("interactions loaded")
}

// WindowStage 对训练集生成序列样本；测试集只做序列编码，使其 item 编码与训练集对齐。
type WindowStage struct {
	WindowLength int
	TargetLength int
	CompactTest  bool
}

func (s *WindowStage) Name() string { return "window" }
func (s *WindowStage) Kind() Kind   { return KindWindow }

func (s *WindowStage) Process(ctx context.Context, st *State) error {
	if st.Train == nil {
		return errors.New("no training interactions loaded")
	}
	train, test, err := sequence.Build(st.Train, s.WindowLength, s.TargetLength)
	if err != nil {
		return err
	}
	if s.CompactTest {
		test = test.Compact()
	}
	st.TrainSequences, st.TestSequences = train, test

	if st.Test != nil {
		st.Test.EncodeSequence()
	}
	logging.Info().
		Int("window_length", s.WindowLength).
		Int("target_length", s.TargetLength).
		Int("train_rows", train.Len()).
		Int("test_rows", test.Len()).
		Msg("sequences built")
	return nil
}

// ExportStage 把训练矩阵、测试矩阵（配置了测试集时）、序列与词表写到 Dir。
type ExportStage struct {
	Dir string
}

func (s *ExportStage) Name() string { return "export" }
func (s *ExportStage) Kind() Kind   { return KindExport }

func (s *ExportStage) Process(ctx context.Context, st *State) error {
	a := export.Artifacts{
		Train: st.TrainSequences,
		Test:  st.TestSequences,
		Users: st.Users,
		Items: st.Items,
	}
	if st.Train != nil {
		a.Matrix = st.Train.ToCSR()
	}
	if st.Test != nil {
		a.TestMatrix = st.Test.ToCSR()
	}
	files, err := (&export.Writer{Dir: s.Dir}).WriteAll(ctx, a)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	st.Files = files
	return nil
}

// VocabStage 保存 user / item 词表，供后续批次复用。
type VocabStage struct {
	Vocab *store.Vocab
}

func (s *VocabStage) Name() string { return "vocab" }
func (s *VocabStage) Kind() Kind   { return KindPersist }

func (s *VocabStage) Process(ctx context.Context, st *State) error {
	if st.Users != nil {
		if err := s.Vocab.Save(ctx, VocabUsers, st.Users); err != nil {
			return err
		}
	}
	if st.Items != nil {
		if err := s.Vocab.Save(ctx, VocabItems, st.Items); err != nil {
			return err
		}
	}
	logging.Info().Str("store", s.Vocab.KV.Name()).Msg("vocabulary saved")
	return nil
}
