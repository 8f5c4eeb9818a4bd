package git

import "testing"

func TestComputeLineHunks_AddedLines(t *testing.T) {
	head := "line1\nline2\n"
	buf := "line1\nnew line\nline2\n"

	hunks := ComputeLineHunks(head, buf)

	if len(hunks) != 1 {
		t.Fatalf("len(hunks) = %d, want 1", len(hunks))
	}
	if hunks[0].Line != 1 {
		t.Errorf("Line = %d, want 1", hunks[0].Line)
	}
	if hunks[0].Status != LineAdded {
		t.Errorf("Status = %v, want LineAdded", hunks[0].Status)
	}
}

func TestComputeLineHunks_ModifiedLines(t *testing.T) {
	head := "line1\nline2\nline3\n"
	buf := "line1\nmodified line\nline3\n"

	hunks := ComputeLineHunks(head, buf)

	if len(hunks) != 1 {
		t.Fatalf("len(hunks) = %d, want 1", len(hunks))
	}
	if hunks[0].Line != 1 {
		t.Errorf("Line = %d, want 1", hunks[0].Line)
	}
	if hunks[0].Status != LineModified {
		t.Errorf("Status = %v, want LineModified", hunks[0].Status)
	}
}

func TestComputeLineHunks_DeletedLines(t *testing.T) {
	head := "line1\nline2\nline3\n"
	buf := "line1\nline3\n"

	hunks := ComputeLineHunks(head, buf)

	if len(hunks) == 0 {
		t.Fatal("expected at least one hunk")
	}
	found := false
	for _, h := range hunks {
		if h.Status == LineDeleted {
			found = true
		}
	}
	if !found {
		t.Error("expected a LineDeleted hunk")
	}
}

func TestComputeLineHunks_EmptyFiles(t *testing.T) {
	if hunks := ComputeLineHunks("", ""); len(hunks) != 0 {
		t.Errorf("expected no hunks, got %d", len(hunks))
	}
}

func TestComputeLineHunks_NewFile(t *testing.T) {
	hunks := ComputeLineHunks("", "line1\nline2\n")

	if len(hunks) != 2 {
		t.Fatalf("len(hunks) = %d, want 2", len(hunks))
	}
	for _, h := range hunks {
		if h.Status != LineAdded {
			t.Errorf("Status = %v, want LineAdded", h.Status)
		}
	}
}

func TestLineDiff_StatusForLine(t *testing.T) {
	d := NewLineDiff(ComputeLineHunks("line1\nline2\n", "line1\nchanged\n"))

	status, ok := d.StatusForLine(1)
	if !ok {
		t.Fatal("StatusForLine(1) ok = false")
	}
	if status != LineModified {
		t.Errorf("status = %v, want LineModified", status)
	}

	if _, ok := d.StatusForLine(5); ok {
		t.Error("StatusForLine(5) ok = true, want false")
	}
}

func TestHeadFileContent(t *testing.T) {
	dir, cleanup := testRepo(t)
	defer cleanup()

	createFile(t, dir, "file.txt", "line1\nline2\n")
	gitCmd(t, dir, "add", "file.txt")
	gitCmd(t, dir, "commit", "-m", "initial")

	mgr := NewManager(ManagerConfig{})
	defer mgr.Close()

	repo, err := mgr.Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	content, err := repo.HeadFileContent("file.txt")
	if err != nil {
		t.Fatalf("head file content: %v", err)
	}
	if content != "line1\nline2\n" {
		t.Errorf("content = %q, want %q", content, "line1\nline2\n")
	}
}

func TestHeadFileContent_NotTracked(t *testing.T) {
	dir, cleanup := testRepo(t)
	defer cleanup()

	createFile(t, dir, "committed.txt", "x")
	gitCmd(t, dir, "add", "committed.txt")
	gitCmd(t, dir, "commit", "-m", "initial")

	createFile(t, dir, "new.txt", "y")

	mgr := NewManager(ManagerConfig{})
	defer mgr.Close()

	repo, err := mgr.Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, err := repo.HeadFileContent("new.txt"); err != ErrNotTracked {
		t.Errorf("err = %v, want ErrNotTracked", err)
	}
}
