// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package query

import "testing"

func TestQuoting(t *testing.T) {
	t.Parallel()

	if got := QuoteIdent(`we"ird`); got != `"we""ird"` {
		t.Errorf("QuoteIdent() = %s", got)
	}
	if got := QuoteLiteral("o'brien.csv"); got != "'o''brien.csv'" {
		t.Errorf("QuoteLiteral() = %s", got)
	}
}

func TestTableBuilder(t *testing.T) {
	t.Parallel()

	tb := NewTableBuilder("articles").
		AddColumn("article_id", "VARCHAR").
		AddColumn("prod_name_length", "BIGINT").
		AddColumn("embeddings", "FLOAT[]")

	wantDDL := `CREATE OR REPLACE TABLE "articles" ("article_id" VARCHAR, "prod_name_length" BIGINT, "embeddings" FLOAT[])`
	if got := tb.CreateOrReplace(); got != wantDDL {
		t.Errorf("CreateOrReplace() =\n%s\nwant\n%s", got, wantDDL)
	}

	cols := tb.Columns()
	cols[0].Name = "changed"
	if tb.Columns()[0].Name != "article_id" {
		t.Error("Columns() should return a copy")
	}
}

func TestCopyTo(t *testing.T) {
	t.Parallel()

	got, err := CopyTo("customers", "/out/customers.parquet", "PARQUET")
	if err != nil {
		t.Fatalf("CopyTo() error: %v", err)
	}
	if want := `COPY "customers" TO '/out/customers.parquet' (FORMAT PARQUET)`; got != want {
		t.Errorf("CopyTo() = %s, want %s", got, want)
	}

	got, err = CopyTo("customers", "c.csv", "csv")
	if err != nil || got != `COPY "customers" TO 'c.csv' (FORMAT CSV, HEADER)` {
		t.Errorf("CopyTo(csv) = %s, %v", got, err)
	}

	if _, err := CopyTo("customers", "c.json", "json"); err == nil {
		t.Error("CopyTo(json) expected error")
	}
}

func TestReadCSV(t *testing.T) {
	t.Parallel()

	if got, want := ReadCSV("data/articles.csv"), "SELECT * FROM read_csv_auto('data/articles.csv', header = true)"; got != want {
		t.Errorf("ReadCSV() = %s, want %s", got, want)
	}
	if got := SelectAll("t"); got != `SELECT * FROM "t"` {
		t.Errorf("SelectAll() = %s", got)
	}
}

func TestStagingStatements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "create table as",
			got:  CreateTableAs("raw_transactions", ReadCSV("t.csv")),
			want: `CREATE OR REPLACE TABLE "raw_transactions" AS SELECT * FROM read_csv_auto('t.csv', header = true)`,
		},
		{
			name: "key table",
			got:  CreateKeyTable("sample_keys"),
			want: `CREATE OR REPLACE TABLE "sample_keys" ("key" VARCHAR)`,
		},
		{
			name: "semijoin",
			got:  Semijoin("raw_transactions", "customer_id", "sample_keys"),
			want: `SELECT * FROM "raw_transactions" WHERE CAST("customer_id" AS VARCHAR) IN (SELECT "key" FROM "sample_keys") ORDER BY rowid`,
		},
		{
			name: "range",
			got:  SelectRange("raw_transactions"),
			want: `SELECT * FROM "raw_transactions" WHERE rowid >= ? AND rowid < ? ORDER BY rowid`,
		},
		{name: "count", got: CountRows("t"), want: `SELECT count(*) FROM "t"`},
		{name: "drop", got: DropTable("t"), want: `DROP TABLE IF EXISTS "t"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.got != tt.want {
				t.Errorf("got\n%s\nwant\n%s", tt.got, tt.want)
			}
		})
	}
}
