// Package router runs the routing passes of one macro.
//
// A [Session] owns everything a pass needs: the macro box, the technology
// config, the layout being written, the placement state shared by the escape
// and moat passes, and the blockage index fed to the path search. The three
// passes are
//
//   - [Session.AddIOPins] / [Session.AddIOPinsConnected]: bring signal pins
//     out to the perimeter, optionally wiring them to their new position,
//   - [Session.RouteSupply]: build power rings and connect each supply net
//     with a minimum spanning tree,
//   - [Session.RouteMoat]: connect guard-ring pins straight out to a ring.
//
// Sessions are not safe for concurrent use.
package router
