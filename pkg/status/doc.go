/*
Package status tracks file outcomes and owns all writes under the output root.

	            +-------------+
	            |   Manager   |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-------+        +------+--------+
	| FileManager |        | StatusReporter|
	| (atomic IO) |        |  (tracking)   |
	+-------------+        +---------------+

🎯 Purpose:
- Performs all filesystem writes below the output root
- Writes atomically (temp file + rename), so a pulled SD card never holds
  a half-written track
- Tracks the outcome of every transfer (copied/recoded/skipped/...)
- Reports progress, optionally with an interactive progress bar

🔄 Flow:
1. Operation starts and announces the total item count
2. Each transfer writes through WriteFileAtomic (or the encoder writes to
   Manager.AbsPath and renames itself)
3. Each outcome is tracked with TrackFile
4. FinishOperation closes the progress bar; Summary aggregates counts

⚡ Key Responsibilities:
- Atomic file writes with checksums
- Per-file status bookkeeping (concurrency safe, transfers run in parallel)
- Progress reporting
- Human-readable status lines via FileFormatter
*/
package status
