// Package srdcrawl provides a recursive crawler that scrapes structured
// entries (monster stat blocks) from a delimited section of a website and
// writes them to a text file.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, http/, sqlite/).
package srdcrawl
