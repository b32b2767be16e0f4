// Package watch wraps fsnotify into a recursive directory watcher.
//
// fsnotify watches single directories. Recursive walks a root on Watch,
// adds every directory beneath it and keeps adding directories as they are
// created. Roots are reference counted so the same tree can be watched by
// several owners, and a directory shared by overlapping roots is only
// removed from fsnotify once no root needs it.
//
// Events carry absolute paths in the namespace of the root that was
// watched. Fatal conditions (queue overflow, fsnotify shutting down) are
// delivered on Errors; anything else is logged and dropped.
package watch
