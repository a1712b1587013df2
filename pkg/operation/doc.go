/*
Package operation contains the runnable units of tonprep.

	          +-----------+
	          |  Runner   |
	          +-----+-----+
	                |
	  +------+------+------+--------+
	  |      |             |        |
	+-+--+ +-+---+     +---+--+ +---+---+
	|write| |check|     |status| | clean |
	+--+--+ +--+--+     +---+--+ +---+---+
	   |       |            |        |
	   +-------+-----+------+--------+
	                 |
	      mapping → plan → encode/status/state

🎯 Purpose:
- write: resolve the map file, transfer every item into the output root
  (parallel, bounded by the jobs setting), update the lock file
- check: dry run, validate the map file and report what write would do
- status: compare output root against map file and lock file
- clean: remove exactly the files the lock file records

🔄 Flow (write):
1. Read + resolve the map file (pkg/mapping)
2. Build the transfer plan (pkg/plan)
3. Load the previous lock file (pkg/state)
4. Transfer items concurrently via errgroup, skipping existing files
   unless overwrite is on
5. Save the new lock file, print the summary

⚡ Key Responsibilities:
- Wiring parser, planner, transferrers, status manager and state together
- Concurrency control for transfers
- Fail-fast semantics: the first transfer error cancels the rest, but the
  lock file still records what was already written
*/
package operation
