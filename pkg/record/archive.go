package record

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"weixiang/pkg/core"
	"weixiang/pkg/game"
)

const (
	ReasonThreshold  = "threshold"
	ReasonUnfinished = "unfinished"
)

type IntentRow struct {
	Seq      int32  `parquet:"name=seq, type=INT32"`
	Action   string `parquet:"name=action, type=BYTE_ARRAY, convertedtype=UTF8"`
	Color    string `parquet:"name=color, type=BYTE_ARRAY, convertedtype=UTF8"`
	Detail   string `parquet:"name=detail, type=BYTE_ARRAY, convertedtype=UTF8"`
	Captured int32  `parquet:"name=captured, type=INT32"`
}

// MatchRecord is one archived match. Winner is empty for unfinished games.
type MatchRecord struct {
	GameID         string      `parquet:"name=game_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Source         string      `parquet:"name=source, type=BYTE_ARRAY, convertedtype=UTF8"`
	Winner         string      `parquet:"name=winner, type=BYTE_ARRAY, convertedtype=UTF8"`
	Reason         string      `parquet:"name=reason, type=BYTE_ARRAY, convertedtype=UTF8"`
	IntentCount    int32       `parquet:"name=intent_count, type=INT32"`
	RejectedCount  int32       `parquet:"name=rejected_count, type=INT32"`
	StoneCount     int32       `parquet:"name=stone_count, type=INT32"`
	BattleCount    int32       `parquet:"name=battle_count, type=INT32"`
	BlackTerritory int32       `parquet:"name=black_territory, type=INT32"`
	WhiteTerritory int32       `parquet:"name=white_territory, type=INT32"`
	BlackTokens    int32       `parquet:"name=black_tokens, type=INT32"`
	WhiteTokens    int32       `parquet:"name=white_tokens, type=INT32"`
	BlackCaptures  int32       `parquet:"name=black_captures, type=INT32"`
	WhiteCaptures  int32       `parquet:"name=white_captures, type=INT32"`
	Intents        []IntentRow `parquet:"name=intents, type=LIST"`
}

type ParquetSchema struct {
	Name   string         `json:"name"`
	Fields []ParquetField `json:"fields"`
}

type ParquetField struct {
	Name     string      `json:"name"`
	Type     interface{} `json:"type"`
	Nullable bool        `json:"nullable"`
}

//go:embed schema/match_schema.json
var schemaJSON []byte

// NewMatchRecord summarizes the current state of g. source names the
// script or session the match came from.
func NewMatchRecord(g *game.Game, source string, rejected int) MatchRecord {
	journal := g.Journal()
	territory, tokens, captures := g.Territory(), g.Tokens(), g.Captures()
	rec := MatchRecord{
		GameID:         g.ID(),
		Source:         source,
		Reason:         ReasonUnfinished,
		IntentCount:    int32(len(journal)),
		RejectedCount:  int32(rejected),
		StoneCount:     int32(len(g.Strategic().Stones())),
		BlackTerritory: int32(territory.Black),
		WhiteTerritory: int32(territory.White),
		BlackTokens:    int32(tokens.Black),
		WhiteTokens:    int32(tokens.White),
		BlackCaptures:  int32(captures.Black),
		WhiteCaptures:  int32(captures.White),
		Intents:        make([]IntentRow, 0, len(journal)),
	}
	if c, ok := g.Winner(); ok {
		rec.Winner = c.String()
		rec.Reason = ReasonThreshold
	}
	for _, e := range journal {
		switch e.Intent.Action {
		case game.ActFortress, game.ActSkip, game.ActEnd:
			rec.BattleCount++
		}
		rec.Intents = append(rec.Intents, IntentRow{
			Seq:      int32(e.Seq),
			Action:   string(e.Intent.Action),
			Color:    e.Color.String(),
			Detail:   e.Intent.String(),
			Captured: int32(e.Captured),
		})
	}
	return rec
}

// WinnerColor parses Winner back into a color.
func (r MatchRecord) WinnerColor() (core.Color, bool) {
	c, err := core.ParseColor(r.Winner)
	if err != nil {
		return 0, false
	}
	return c, true
}

// WriteParquet drains records into a snappy-compressed parquet file at path.
func WriteParquet(path string, records <-chan MatchRecord, parallel int64) error {
	schema, err := loadParquetSchema(schemaJSON)
	if err != nil {
		return err
	}
	if err := validateSchema(schema, MatchRecord{}); err != nil {
		return err
	}

	fileWriter, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	defer fileWriter.Close()

	parquetWriter, err := writer.NewParquetWriter(fileWriter, new(MatchRecord), parallel)
	if err != nil {
		return err
	}
	parquetWriter.CompressionType = parquet.CompressionCodec_SNAPPY

	for record := range records {
		if err := parquetWriter.Write(record); err != nil {
			return err
		}
	}
	if err := parquetWriter.WriteStop(); err != nil {
		return err
	}
	return fileWriter.Close()
}

// ReadParquet loads every record from the archive at path.
func ReadParquet(path string, parallel int64) ([]MatchRecord, error) {
	absPath := path
	if !filepath.IsAbs(path) {
		if resolved, err := filepath.Abs(path); err == nil {
			absPath = resolved
		}
	}
	fileReader, err := local.NewLocalFileReader(absPath)
	if err != nil {
		return nil, err
	}
	defer fileReader.Close()

	parquetReader, err := reader.NewParquetReader(fileReader, new(MatchRecord), parallel)
	if err != nil {
		return nil, err
	}
	defer parquetReader.ReadStop()

	num := int(parquetReader.GetNumRows())
	records := make([]MatchRecord, 0, num)
	batchSize := 1024
	for offset := 0; offset < num; offset += batchSize {
		remain := num - offset
		if remain < batchSize {
			batchSize = remain
		}
		batch := make([]MatchRecord, batchSize)
		if err := parquetReader.Read(&batch); err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}
	return records, nil
}

func loadParquetSchema(data []byte) (ParquetSchema, error) {
	var schema ParquetSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return ParquetSchema{}, fmt.Errorf("parquet schema: %w", err)
	}
	return schema, nil
}

func validateSchema(schema ParquetSchema, sample any) error {
	schemaFields := make(map[string]struct{}, len(schema.Fields))
	for _, field := range schema.Fields {
		schemaFields[field.Name] = struct{}{}
	}
	structFields := structParquetFieldNames(sample)
	missing := diffKeys(schemaFields, structFields)
	extra := diffKeys(structFields, schemaFields)
	if len(missing) > 0 || len(extra) > 0 {
		return fmt.Errorf("parquet schema mismatch: missing=%v extra=%v", missing, extra)
	}
	return nil
}

func structParquetFieldNames(sample any) map[string]struct{} {
	fields := map[string]struct{}{}
	v := reflect.TypeOf(sample)
	for i := 0; i < v.NumField(); i++ {
		if name := parseParquetName(v.Field(i).Tag.Get("parquet")); name != "" {
			fields[name] = struct{}{}
		}
	}
	return fields
}

func parseParquetName(tag string) string {
	for _, part := range strings.Split(tag, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) == 2 && kv[0] == "name" {
			return kv[1]
		}
	}
	return ""
}

func diffKeys(a, b map[string]struct{}) []string {
	var diff []string
	for key := range a {
		if _, ok := b[key]; !ok {
			diff = append(diff, key)
		}
	}
	return diff
}
