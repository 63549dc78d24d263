package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iksnae/chat-session/internal"
	"github.com/spf13/cobra"
)

var (
	inspectFormat     string
	inspectSampleRows int
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [database-path]",
	Short: "Inspect the local state database",
	Long: `Inspect the schema and contents of the local state database.

This command provides detailed information about:
  • Database schema (tables, columns, types)
  • Stored key-value pairs, including the current session id
  • Row counts

Examples:
  chat-session inspect                          # Inspect the configured state database
  chat-session inspect /path/to/state.db        # Inspect a specific database
  chat-session inspect --format json            # Stored pairs as JSON`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := appConfig.StatePath
		if len(args) > 0 {
			dbPath = args[0]
		}
		if _, err := os.Stat(dbPath); err != nil {
			return fmt.Errorf("no state database at %s: %w", dbPath, err)
		}

		db, err := internal.OpenDatabase(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() { _ = db.Close() }()

		out := cmd.OutOrStdout()
		switch inspectFormat {
		case "json":
			return inspectJSON(cmd.Context(), out, db)
		case "text":
			return inspectDatabase(out, db, dbPath)
		default:
			return fmt.Errorf("unsupported format: %s (supported: text, json)", inspectFormat)
		}
	},
}

func inspectJSON(ctx context.Context, out io.Writer, db *sql.DB) error {
	pairs, err := internal.QueryItemTable(ctx, db, "%")
	if err != nil {
		return err
	}
	items := make(map[string]string, len(pairs))
	for _, p := range pairs {
		items[p.Key] = p.Value
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func inspectDatabase(out io.Writer, db *sql.DB, dbPath string) error {
	tables, err := getTables(db)
	if err != nil {
		return fmt.Errorf("failed to get tables: %w", err)
	}

	if len(tables) == 0 {
		fmt.Fprintln(out, "⚠️  No tables found in database")
		return nil
	}

	fmt.Fprintf(out, "📋 Database: %s\n", dbPath)
	fmt.Fprintf(out, "📊 Found %d table(s)\n\n", len(tables))

	for _, tableName := range tables {
		if err := inspectTable(out, db, tableName); err != nil {
			fmt.Fprintf(out, "⚠️  Error inspecting table %s: %v\n", tableName, err)
			continue
		}
		fmt.Fprintln(out)
	}

	return nil
}

func getTables(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func inspectTable(out io.Writer, db *sql.DB, tableName string) error {
	fmt.Fprintf(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(out, "📦 Table: %s\n", tableName)
	fmt.Fprintf(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")

	var rowCount int
	if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %q", tableName)).Scan(&rowCount); err != nil {
		return fmt.Errorf("failed to get row count: %w", err)
	}
	fmt.Fprintf(out, "📊 Rows: %d\n\n", rowCount)

	columns, err := getTableSchema(db, tableName)
	if err != nil {
		return fmt.Errorf("failed to get schema: %w", err)
	}

	fmt.Fprintf(out, "📐 Schema:\n")
	for _, col := range columns {
		pk := ""
		if col.PrimaryKey {
			pk = " [PRIMARY KEY]"
		}
		notNull := ""
		if col.NotNull {
			notNull = " NOT NULL"
		}
		fmt.Fprintf(out, "  • %s: %s%s%s\n", col.Name, col.Type, notNull, pk)
	}
	fmt.Fprintln(out)

	if rowCount > 0 && inspectSampleRows > 0 {
		if err := showSampleData(out, db, tableName, columns, inspectSampleRows); err != nil {
			fmt.Fprintf(out, "⚠️  Error showing sample data: %v\n", err)
		}
	}

	return nil
}

type ColumnInfo struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
}

func getTableSchema(db *sql.DB, tableName string) ([]ColumnInfo, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%q)", tableName))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		var cid int
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &defaultValue, &pk); err != nil {
			continue
		}
		col.NotNull = notNull == 1
		col.PrimaryKey = pk == 1
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func showSampleData(out io.Writer, db *sql.DB, tableName string, columns []ColumnInfo, limit int) error {
	if len(columns) == 0 {
		return nil
	}

	colNames := make([]string, len(columns))
	for i, col := range columns {
		colNames[i] = fmt.Sprintf("%q", col.Name)
	}

	query := fmt.Sprintf("SELECT %s FROM %q LIMIT %d", strings.Join(colNames, ", "), tableName, limit)
	rows, err := db.Query(query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	fmt.Fprintf(out, "📄 Sample Data (first %d rows):\n", limit)
	rowNum := 0
	for rows.Next() {
		rowNum++
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			fmt.Fprintf(out, "  ⚠️  Row %d: error scanning: %v\n", rowNum, err)
			continue
		}

		fmt.Fprintf(out, "\n  Row %d:\n", rowNum)
		for i, col := range columns {
			fmt.Fprintf(out, "    %s: %s\n", col.Name, formatValue(values[i]))
		}
	}

	return rows.Err()
}

// formatValue renders a column value on one line, truncated
func formatValue(val interface{}) string {
	if val == nil {
		return "<NULL>"
	}
	var valStr string
	if b, ok := val.([]byte); ok {
		valStr = string(b)
	} else {
		valStr = fmt.Sprintf("%v", val)
	}
	if len(valStr) > 200 {
		valStr = valStr[:200] + "..."
	}
	if strings.Contains(valStr, "\n") {
		valStr = strings.Split(valStr, "\n")[0] + "..."
	}
	return valStr
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format (text, json)")
	inspectCmd.Flags().IntVar(&inspectSampleRows, "sample", 5, "Number of sample rows to show")
}
