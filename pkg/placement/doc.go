// Package placement assigns perimeter placeholder pins ("fake pins") to the
// internal pins that must escape the macro.
//
// # Roles
//
// Pin names are mapped once to a closed set of [Role] values by prefix
// (clk, addr0, addr1, dout0, dout1, din, wmask, spare_wen, web, csb). Each role
// has an entry in [Rules] that decides the edge a pin escapes through, given the
// edge the geometric classifier picked. Names that match no prefix are reported
// as unclassified and left for the caller to handle.
//
// # Collision avoidance
//
// A placeholder starts at its nominal position: the source pin's along-edge
// coordinate, pushed just outside the perimeter. While an earlier placeholder on
// the same edge is closer than the minimum pitch, the candidate is shifted along
// the edge by a growing displacement. The search is bounded by
// tech.Config.MaxProbeSteps and fails with PLACEMENT_INFEASIBLE when exhausted.
//
// All per-pass bookkeeping lives in a [State] value owned by the caller.
package placement
