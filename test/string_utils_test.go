package main

import (
	"database/sql"
	"testing"

	"app/utils"
)

func TestNullStringToStringPtr(t *testing.T) {
	ns := sql.NullString{String: "hello", Valid: true}
	p := utils.NullStringToStringPtr(ns)
	if p == nil || *p != "hello" {
		t.Fatalf("expected pointer to 'hello', got %v", p)
	}

	ns2 := sql.NullString{Valid: false}
	p2 := utils.NullStringToStringPtr(ns2)
	if p2 != nil {
		t.Fatalf("expected nil pointer, got %v", p2)
	}
}

func TestCreatePagination(t *testing.T) {
	p := utils.CreatePagination(25, 2, 10)
	if p.TotalPages != 3 {
		t.Fatalf("expected 3 pages for 25 items of size 10, got %d", p.TotalPages)
	}
	if p.CurrentPage != 2 || p.PageSize != 10 || p.TotalItems != 25 {
		t.Fatalf("unexpected pagination: %+v", p)
	}

	// Defaults kick in for nonsense input.
	p = utils.CreatePagination(5, 0, 0)
	if p.CurrentPage != 1 || p.PageSize != 10 {
		t.Fatalf("expected defaults, got %+v", p)
	}
}
