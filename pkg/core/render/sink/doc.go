// Package sink serialises scenes.
//
// [RenderSVG] writes a standalone SVG document, [RenderJSON] the scene as
// JSON for external renderers, and [ToDOT] / [RenderGraphviz] a Graphviz
// document whose node positions are pinned to the resolved layout. PDF and
// PNG output is produced from SVG by the render package.
package sink
