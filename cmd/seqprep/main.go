// Command seqprep 把交互日志预处理为序列推荐模型的训练数组。
//
//	seqprep build --config seq.yaml
//	seqprep build --train data/train.txt --window 5 --target 3 --out out/
package main

import (
	"os"

	"github.com/spf13/cobra"

	_ "github.com/rushteam/seqkit/config/builders"
)

var rootCmd = &cobra.Command{
	Use:           "seqprep",
	Short:         "Prepare interaction logs for sequence recommendation models",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
