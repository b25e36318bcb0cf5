// Package dataset 把原始交互日志加载为稠密编码的 (user, item) 交互表。
//
// 输入格式：纯文本，每行一条交互，按空白切分；第一列为用户 ID，第二列为物品 ID，其余列忽略。
// 列数不足 2 的行以及超过 maxLineLength 的超长行记录 warning 后跳过，不视为错误。
package dataset

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rushteam/seqkit/pkg/dsl"
	"github.com/rushteam/seqkit/pkg/logging"
)

const (
	// cancelCheckEvery 是检查 ctx 取消的行间隔
	cancelCheckEvery = 4096
	// maxLineLength 是单行保留的最大字节数，更长的行读完后按格式错误丢弃
	maxLineLength = 1 << 20
)

// Interactions 是按文件顺序排列的 (user, item) 编码对。
//
// NumUsers / NumItems 是加载完成后 Registry 的编码空间宽度，
// 即当前已知的全部编码数，而非仅本次加载中出现的编码。
type Interactions struct {
	UserIDs  []int
	ItemIDs  []int
	NumUsers int
	NumItems int

	Users *Registry
	Items *Registry

	stats           LoadStats
	sequenceEncoded bool
}

// LoadStats 记录一次加载的行数统计。
type LoadStats struct {
	Lines     int // 读到的总行数
	Accepted  int // 进入交互表的行数
	Malformed int // 列数不足或超长被跳过的行数
	Filtered  int // 被 LineFilter 拒绝（或求值失败）的行数
}

// LoadOption 是 Load 的可选参数。
type LoadOption func(*loadOptions)

type loadOptions struct {
	filter *dsl.LineFilter
	source string
}

// WithFilter 设置行过滤器，nil 表示不过滤。
func WithFilter(f *dsl.LineFilter) LoadOption {
	return func(o *loadOptions) {
		o.filter = f
	}
}

// WithSourceName 设置日志中标识输入来源的名字（LoadReader 时有用）。
func WithSourceName(name string) LoadOption {
	return func(o *loadOptions) {
		o.source = name
	}
}

// Load 从文件加载交互表。
//
// users / items 同时为 nil 时创建新的 Registry；传入已有 Registry 时在其基础上增量扩展，
// 已分配的编码保持不变，从而让训练集与测试集共享同一套编码。
// 文件打开失败直接返回错误。
func Load(ctx context.Context, path string, users, items *Registry, opts ...LoadOption) (*Interactions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open interactions %q: %w", path, err)
	}
	defer f.Close()

	opts = append([]LoadOption{WithSourceName(path)}, opts...)
	return LoadReader(ctx, f, users, items, opts...)
}

// LoadReader 与 Load 相同，但从任意 io.Reader 读取。
func LoadReader(ctx context.Context, r io.Reader, users, items *Registry, opts ...LoadOption) (*Interactions, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if users == nil {
		users = NewRegistry()
	}
	if items == nil {
		items = NewRegistry()
	}

	log := logging.With().Str("source", o.source).Logger()
	t := &Interactions{Users: users, Items: items}

	br := bufio.NewReaderSize(r, 64*1024)
	for {
		line, tooLong, err := readLine(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read interactions: %w", err)
		}
		t.stats.Lines++
		lineNo := t.stats.Lines
		if lineNo%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if tooLong {
			t.stats.Malformed++
			log.Warn().Int("line", lineNo).Int("limit", maxLineLength).Msg("skipping over-long line")
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			t.stats.Malformed++
			log.Warn().Int("line", lineNo).Str("content", line).Msg("skipping malformed line")
			continue
		}

		ok, err := o.filter.Match(fields, lineNo)
		if err != nil {
			log.Warn().Err(err).Int("line", lineNo).Str("content", line).Msg("filter evaluation failed, skipping line")
		}
		if !ok {
			t.stats.Filtered++
			continue
		}

		// user 与 item 各自独立地按首次出现顺序分配编码
		t.UserIDs = append(t.UserIDs, users.Encode(fields[0]))
		t.ItemIDs = append(t.ItemIDs, items.Encode(fields[1]))
		t.stats.Accepted++
	}
	t.NumUsers = users.Size()
	t.NumItems = items.Size()
	// 物品词表已经移位过，编码天然避开了 PaddingCode
	t.sequenceEncoded = items.Shifted()

	log.Debug().
		Int("lines", t.stats.Lines).
		Int("accepted", t.stats.Accepted).
		Int("malformed", t.stats.Malformed).
		Int("filtered", t.stats.Filtered).
		Int("num_users", t.NumUsers).
		Int("num_items", t.NumItems).
		Msg("interactions loaded")
	return t, nil
}

// readLine 读取一行（不含行尾换行符）。
// 超过 maxLineLength 的行会被完整读完并丢弃内容，tooLong 为 true；输入结束时返回 io.EOF。
func readLine(br *bufio.Reader) (line string, tooLong bool, err error) {
	var buf []byte
	read := false
	for {
		chunk, isPrefix, rerr := br.ReadLine()
		if rerr != nil {
			if rerr == io.EOF && read {
				return string(buf), tooLong, nil
			}
			return "", false, rerr
		}
		read = true
		if !tooLong {
			if len(buf)+len(chunk) > maxLineLength {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

// Len 返回交互条数。
func (t *Interactions) Len() int {
	return len(t.UserIDs)
}

// Stats 返回加载统计。
func (t *Interactions) Stats() LoadStats {
	return t.stats
}

// SequenceEncoded 报告序列编码是否已经生效。
func (t *Interactions) SequenceEncoded() bool {
	return t.sequenceEncoded
}

// EncodeSequence 把所有 item 编码 +1，NumItems +1，为 PaddingCode 让出 0。
//
// 只在第一次调用时生效，返回是否发生了移位；之后的调用检测到标记直接返回。
// 共享的物品词表若已被另一张表移位过，这里不会重复移位词表。
func (t *Interactions) EncodeSequence() bool {
	if t.sequenceEncoded {
		return false
	}
	for i := range t.ItemIDs {
		t.ItemIDs[i]++
	}
	t.Items.ShiftAll()
	t.NumItems++
	t.sequenceEncoded = true
	return true
}
