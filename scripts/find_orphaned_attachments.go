// Package main contains a small maintenance tool that finds files in the
// uploads directory that no report references and optionally deletes them.
// Database resets never remove attachment files, so orphans accumulate until
// a pass of this tool.
package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	var dbPath string
	var uploadsDir string
	var remove bool

	flag.StringVar(&dbPath, "db", "reports.db", "path to the SQLite database file")
	flag.StringVar(&uploadsDir, "uploads", "uploads", "path to the uploads directory")
	flag.BoolVar(&remove, "delete", false, "delete orphaned files instead of listing them")
	flag.Parse()

	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_busy_timeout=5000")
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	// Compare by base name; the stored path and the -uploads flag may reach
	// the same directory through different prefixes
	referenced := make(map[string]bool)
	rows, err := db.Query(`SELECT attachment_path FROM reports WHERE attachment_path IS NOT NULL AND attachment_path <> ''`)
	if err != nil {
		log.Fatalf("query attachment paths: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			log.Fatalf("scan attachment path: %v", err)
		}
		referenced[filepath.Base(p)] = true
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("iterate attachment paths: %v", err)
	}

	entries, err := os.ReadDir(uploadsDir)
	if os.IsNotExist(err) {
		log.Printf("uploads directory %s does not exist, nothing to do", uploadsDir)
		return
	}
	if err != nil {
		log.Fatalf("read uploads directory: %v", err)
	}

	var orphans int
	for _, entry := range entries {
		if entry.IsDir() || referenced[entry.Name()] {
			continue
		}
		orphans++
		full := filepath.Join(uploadsDir, entry.Name())
		if remove {
			if err := os.Remove(full); err != nil {
				log.Printf("delete %s: %v", full, err)
				continue
			}
			log.Printf("deleted %s", full)
		} else {
			log.Printf("orphaned: %s", full)
		}
	}

	log.Printf("%d referenced attachment(s), %d orphaned file(s) (delete=%v)", len(referenced), orphans, remove)
}
