// qcctl 命令行维护工具：搜索、待审核清单、QC 查询与 Excel 导出
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
