package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/model"
)

// Header 导出文件的列
var Header = []string{"date", "keyword", "source", "text", "sentiment"}

// Write 以 CSV 写出数据集，每条记录一行
func (d *Dataset) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range d.records {
		row := []string{
			r.Date.Format(time.DateOnly),
			r.Keyword,
			r.Source,
			r.Text,
			strconv.FormatFloat(r.Sentiment, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV 写出到文件，必要时创建目录
func (d *Dataset) WriteCSV(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Read 读取 Write 写出的 CSV；引号内的 \r\n 会被读成 \n
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	head, err := cr.Read()
	if err == io.EOF {
		return Build(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range Header {
		if head[i] != col {
			return nil, fmt.Errorf("unexpected column %d: got %q, want %q", i+1, head[i], col)
		}
	}

	var records []model.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)
		date, err := time.Parse(time.DateOnly, row[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q", line, row[0])
		}
		score, err := strconv.ParseFloat(row[4], 64)
		if err != nil || !model.ValidSentiment(score) {
			return nil, fmt.Errorf("line %d: invalid sentiment %q", line, row[4])
		}
		records = append(records, model.Record{
			Date:      date,
			Keyword:   row[1],
			Source:    row[2],
			Text:      row[3],
			Sentiment: score,
		})
	}
	return &Dataset{records: records}, nil
}

// ReadCSV 从文件读取数据集
func ReadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
