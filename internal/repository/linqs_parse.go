package repository

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	pkgerrors "graphmine/pkg/errors"
)

var (
	pubmedEdgeRegex = regexp.MustCompile(`paper:(\d+)`)
	pubmedNodeRegex = regexp.MustCompile(`^(\d+)\s+label=(\d+)`)
	pubmedWordRegex = regexp.MustCompile(`w-(\w+)=(\S+)`)
)

// pubmedLabels maps the numeric label field of the Pubmed content file to its
// class names.
var pubmedLabels = []string{
	"Diabetes Mellitus, Experimental",
	"Diabetes Mellitus Type 1",
	"Diabetes Mellitus Type 2",
}

// ParsePubmedIncidenceMatrix converts the Pubmed-Diabetes cites and content
// files into a weighted edge list and a typed node list. Paper-to-paper
// citations become Paper2Paper edges with no weight; the per-paper TF-IDF
// word entries become weighted Paper2Word edges, and every distinct word
// becomes a Word node.
func ParsePubmedIncidenceMatrix(citesPath, contentPath, edgeListPath, nodeListPath string) error {
	edgeList, err := createListFile(edgeListPath, "subject\tobject\tedge_type\tweight")
	if err != nil {
		return err
	}
	defer edgeList.file.Close()
	nodeList, err := createListFile(nodeListPath, "id\tnode_type")
	if err != nil {
		return err
	}
	defer nodeList.file.Close()

	// Both raw files open with two header/schema lines.
	citesLines, err := readLines(citesPath, 2)
	if err != nil {
		return err
	}
	for _, line := range citesLines {
		edge := pubmedEdgeRegex.FindAllStringSubmatch(line, -1)
		if len(edge) != 2 {
			continue
		}
		edgeList.row(edge[0][1], edge[1][1], "Paper2Paper", "")
	}

	contentLines, err := readLines(contentPath, 2)
	if err != nil {
		return err
	}
	words := make(map[string]bool)
	for i, line := range contentLines {
		node := pubmedNodeRegex.FindStringSubmatch(line)
		if node == nil {
			break
		}
		src := node[1]
		label, err := strconv.Atoi(node[2])
		if err != nil || label < 1 || label > len(pubmedLabels) {
			return pkgerrors.NewParseFailed(contentPath, i+3,
				fmt.Sprintf("invalid label in %q", line), err)
		}
		nodeList.row(src, pubmedLabels[label-1])

		for _, match := range pubmedWordRegex.FindAllStringSubmatch(line, -1) {
			edgeList.row(src, match[1], "Paper2Word", match[2])
			words[match[1]] = true
		}
	}

	for _, word := range sortedKeys(words) {
		nodeList.row(word, "Word")
	}

	if err := edgeList.flush(); err != nil {
		return pkgerrors.NewParseFailed(edgeListPath, 0, "write failed", err)
	}
	if err := nodeList.flush(); err != nil {
		return pkgerrors.NewParseFailed(nodeListPath, 0, "write failed", err)
	}
	return nil
}

// ParseIncidenceMatrix converts the Cora/CiteSeer cites and content files
// into an edge list and a typed node list. Content rows are
// "<id> <flag>... <label>" where each set flag links the paper to a word_<i>
// node; cites rows are plain paper pairs. Papers referenced only by the cites
// file get the Unknown type.
func ParseIncidenceMatrix(citesPath, contentPath, edgeListPath, nodeListPath string) error {
	edgeList, err := createListFile(edgeListPath, "subject\tobject\tedge_type")
	if err != nil {
		return err
	}
	defer edgeList.file.Close()
	nodeList, err := createListFile(nodeListPath, "id\tnode_type")
	if err != nil {
		return err
	}
	defer nodeList.file.Close()

	contentLines, err := readLines(contentPath, 0)
	if err != nil {
		return err
	}
	papers := make(map[string]bool)
	maxWord := -1
	for i, line := range contentLines {
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return pkgerrors.NewParseFailed(contentPath, i+1,
				fmt.Sprintf("content row has %d columns, need at least 3", len(fields)), nil)
		}
		id := fields[0]
		label := fields[len(fields)-1]
		papers[id] = true
		nodeList.row(id, label)

		for wordID, flag := range fields[1 : len(fields)-1] {
			if flag != "1" {
				continue
			}
			edgeList.row(id, fmt.Sprintf("word_%d", wordID), "Paper2Word")
			if wordID > maxWord {
				maxWord = wordID
			}
		}
	}

	for wordID := 0; wordID <= maxWord; wordID++ {
		nodeList.row(fmt.Sprintf("word_%d", wordID), "Word")
	}

	citesLines, err := readLines(citesPath, 0)
	if err != nil {
		return err
	}
	unknown := make(map[string]bool)
	for i, line := range citesLines {
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return pkgerrors.NewParseFailed(citesPath, i+1,
				fmt.Sprintf("cites row has %d columns, need 2", len(fields)), nil)
		}
		edgeList.row(fields[0], fields[1], "Paper2Paper")
		for _, id := range fields {
			if !papers[id] {
				unknown[id] = true
			}
		}
	}
	for _, id := range sortedKeys(unknown) {
		nodeList.row(id, "Unknown")
	}

	if err := edgeList.flush(); err != nil {
		return pkgerrors.NewParseFailed(edgeListPath, 0, "write failed", err)
	}
	if err := nodeList.flush(); err != nil {
		return pkgerrors.NewParseFailed(nodeListPath, 0, "write failed", err)
	}
	return nil
}

// listFile is a buffered TSV writer for the generated lists.
type listFile struct {
	file   *os.File
	writer *bufio.Writer
}

func createListFile(path, header string) (*listFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, pkgerrors.NewParseFailed(path, 0, "cannot create directory", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, pkgerrors.NewParseFailed(path, 0, "cannot create file", err)
	}
	w := bufio.NewWriter(f)
	fmt.Fprintln(w, header)
	return &listFile{file: f, writer: w}, nil
}

func (l *listFile) row(fields ...string) {
	fmt.Fprintln(l.writer, strings.Join(fields, "\t"))
}

// flush drains the buffer; the deferred file Close in the callers runs after.
func (l *listFile) flush() error {
	return l.writer.Flush()
}

// readLines loads a file and drops the first skip lines and any trailing
// empty line.
func readLines(path string, skip int) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.NewParseFailed(path, 0, "cannot read file", err)
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if skip >= len(lines) {
		return nil, nil
	}
	return lines[skip:], nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
