// Package category classifies gradebook columns into weighted academic
// categories.
//
// Classification is a case-insensitive substring search over the column name,
// resolved in priority order:
//
//   - "final" → [Final]
//   - "exam" → [Exam]
//   - "exercise" → [Exercise]
//   - anything else → [Other]
//
// A "Final Exam" column is therefore [Final], not [Exam]. [Other] columns carry
// no weight and are excluded from scoring.
package category
