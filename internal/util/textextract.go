package util

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText 从上传文件中提取纯文本。
// PDF走解析器，其余按纯文本处理。
func ExtractText(fileName string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == ".pdf" {
		return extractPDFText(content)
	}
	return string(content), nil
}

func extractPDFText(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		// 单页解析失败跳过，不让一页坏数据拖垮整份文档
		text, pageErr := p.GetPlainText(nil)
		if pageErr != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("no extractable text found in pdf")
	}
	return b.String(), nil
}

// ExtractTextFromFile 从本地路径读取并提取文本
func ExtractTextFromFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return ExtractText(path, content)
}
