package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/asdine/storm/v3"
	"github.com/chzyer/readline"
	"github.com/mdouchement/corkboard/internal/database"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/mdouchement/corkboard/pkg/stormsql"
	"github.com/muesli/coral"
	"github.com/pkg/errors"
)

var tables = map[string]func() (record any, records any){
	"users":        func() (any, any) { return &model.User{}, &[]*model.User{} },
	"items":        func() (any, any) { return &model.Item{}, &[]*model.Item{} },
	"snapshots":    func() (any, any) { return &model.Snapshot{}, &[]*model.Snapshot{} },
	"menu_entries": func() (any, any) { return &model.MenuEntry{}, &[]*model.MenuEntry{} },
}

// corkboard console -c corkboard.yml "SELECT count(*) FROM items WHERE type = 'note' AND updated_at > '2024-05-01 20:52:55'"

var consoleCmd = &coral.Command{
	Use:   "console [QUERY]",
	Short: "SQL console for the storm database (the server must be stopped)",
	Args:  coral.MaximumNArgs(1),
	RunE: func(_ *coral.Command, args []string) error {
		konf, err := load(cfg)
		if err != nil {
			return err
		}
		if driver := konf.String("database_driver"); driver != database.DriverStorm {
			return errors.Errorf("the console only supports the %s driver, use the sqlite3 shell for %s", database.DriverStorm, driver)
		}

		//
		//
		filename := dbnameWithPath(konf.String("database_path"))
		fmt.Println("Opening", filename)
		db, err := storm.Open(filename, database.StormCodec)
		if err != nil {
			return errors.Wrap(err, "could not open database")
		}
		defer db.Close()

		if len(args) == 1 {
			return execute(db, args[0])
		}

		//
		// Interactive mode
		//

		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "corkboard> ",
			HistoryFile:     ".corkboard_console_history",
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			return errors.Wrap(err, "could not start console")
		}
		defer rl.Close()

		for {
			line, err := rl.Readline()
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}

			switch line = strings.TrimSpace(line); strings.ToLower(line) {
			case "":
				continue
			case "exit", "quit", `\q`:
				return nil
			case "tables", `\d`:
				for name := range tables {
					fmt.Println(name)
				}
				continue
			}

			if err = execute(db, line); err != nil {
				fmt.Println("error:", err)
			}
		}
	},
}

func execute(db *storm.DB, sql string) error {
	sc, err := stormsql.ParseSelect(sql)
	if err != nil {
		return err
	}

	table, ok := tables[sc.Tablename]
	if !ok {
		return errors.Errorf("unknown tablename: %s", sc.Tablename)
	}
	record, records := table()

	// Execute

	query := sc.Query(db)
	if sc.Count {
		n, err := query.Count(record)
		if err != nil {
			return errors.Wrap(err, "could not perform query")
		}

		fmt.Println("Count:", n)
		return nil
	}

	err = query.Find(records)
	if err == storm.ErrNotFound {
		fmt.Println("[]")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "could not perform query")
	}

	return jsondump(project(records, sc.SelectedFields))
}

// project keeps only the selected columns of the records.
func project(records any, fields []string) any {
	if len(fields) == 0 {
		return records
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return records
	}
	var rows []map[string]any
	if err = json.Unmarshal(payload, &rows); err != nil {
		return records
	}

	projection := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		selected := map[string]any{}
		for _, field := range fields {
			selected[field] = row[field]
		}
		projection = append(projection, selected)
	}
	return projection
}

func jsondump(v any) error {
	d, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not format records")
	}
	fmt.Println(string(d))
	return nil
}
