// Package limits provides centralized frame size and memory limits for the
// benchmark pipeline. This ensures every stage validates decoded frames the
// same way before they are materialized.
//
// # Limits
//
//   - MaxFrameDimension (16384 pixels): the largest accepted width or height.
//     This matches the limit of common decoders and keeps Width*Height*3 well
//     inside the int range.
//
//   - MaxFrameBytes: the size of the largest accepted frame,
//     MaxFrameDimension² × 3 bytes.
//
// # Materialization Budget
//
// The pipeline holds every decoded frame in memory before filtering starts.
// A Budget tracks the bytes accumulated during that phase and fails once a
// configured ceiling is crossed:
//
//	budget := limits.NewBudget(4 << 30) // 4 GiB, 0 = unlimited
//	for each frame {
//	    if err := budget.Reserve(len(frame.Data)); err != nil {
//	        // errors.Is(err, limits.ErrFrameBudgetExceeded)
//	    }
//	}
//
// # Error Types
//
// The package provides structured errors with context:
//
//   - ErrInvalidDimensions: width or height is zero, negative, or above MaxFrameDimension
//   - ErrFrameBudgetExceeded: materialized frames would exceed the budget
//
// Use errors.Is() to check for specific error types.
package limits
